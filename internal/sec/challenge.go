package sec

import (
	"io"

	"github.com/steambap/captcha"
)

// Challenge rendering parameters. The distortion is purely cosmetic anti-bot
// friction; the answer is always [ChallengeLength] characters.
const (
	ChallengeLength = 4
	challengeWidth  = 260
	challengeHeight = 96
)

// Challenge is a rendered captcha: the expected answer text plus the PNG
// image encoding it.
type Challenge struct {
	Answer string
	data   *captcha.Data
}

// NewChallenge renders a fresh captcha challenge.
func NewChallenge() (*Challenge, error) {
	data, err := captcha.New(challengeWidth, challengeHeight, func(o *captcha.Options) {
		o.TextLength = ChallengeLength
		o.CurveNumber = 2
		o.Noise = 1.5
	})
	if err != nil {
		return nil, err
	}
	return &Challenge{Answer: data.Text, data: data}, nil
}

// WritePNG writes the challenge image to w.
func (c *Challenge) WritePNG(w io.Writer) error {
	return c.data.WriteImage(w)
}
