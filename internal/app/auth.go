package app

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zhanghaidi/nako-blog/internal/sec"
	"github.com/zhanghaidi/nako-blog/internal/session"
	"github.com/zhanghaidi/nako-blog/internal/storage"
)

// User-facing messages for the login flow. Authentication failures collapse
// into two generic strings so a caller cannot tell which check failed beyond
// challenge-vs-credentials.
const (
	msgLoginSuccess    = "登陆成功"
	msgAlreadyLoggedIn = "你已经登陆了"
	msgCaptchaWrong    = "验证码错误"
	msgBadCredentials  = "账号或者密码错误"
	msgAccountDisabled = "账号不存在或者已被禁用"
	msgLoginFailed     = "登陆失败"
	msgNeedLogin       = "请先登陆"

	msgNameRequired     = "账号不能为空"
	msgPasswordRequired = "密码不能为空"
	msgCaptchaRequired  = "验证码不能为空"
	msgCaptchaBadLength = "验证码位数错误"
)

const (
	loginPath      = "/admin/auth/login"
	adminIndexPath = "/admin/index"
)

// captcha issues a new challenge, binding the answer to the session and
// returning the rendered PNG. A session-write failure degrades to a plaintext
// "nodata" body rather than an error.
func (h handler) captcha(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	ch, err := sec.NewChallenge()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render captcha", slog.Any("error", err))
		return c.String(http.StatusOK, "nodata")
	}
	if err := sess.SetChallenge(ctx, ch.Answer); err != nil {
		h.logger.ErrorContext(ctx, "failed to bind captcha to session", slog.Any("error", err))
		return c.String(http.StatusOK, "nodata")
	}

	var buf bytes.Buffer
	if err := ch.WritePNG(&buf); err != nil {
		return c.String(http.StatusOK, "nodata")
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// loginPage renders the login form with a fresh ephemeral public key. Each
// view replaces the session-bound private key.
func (h handler) loginPage(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	if id, err := sess.LoginID(ctx); err == nil && id > 0 {
		return c.Redirect(http.StatusFound, adminIndexPath)
	}

	pubKey := ""
	privPEM, pubPEM, err := sec.GenerateKeyPair(sec.KeyBits)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate login keypair", slog.Any("error", err))
	} else if err := sess.SetAuthKey(ctx, privPEM); err != nil {
		h.logger.ErrorContext(ctx, "failed to bind login key to session", slog.Any("error", err))
	} else {
		pubKey = sec.StripPEM(pubPEM)
	}

	return c.Render(http.StatusOK, "login.html", map[string]any{"PubKey": pubKey})
}

// loginSubmit evaluates a login attempt. Checks run in a fixed order and
// short-circuit on the first failure; the issued challenge is consumed by the
// attempt whether or not it matches.
func (h handler) loginSubmit(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	loginID, err := sess.LoginID(ctx)
	if err != nil {
		return jsonFail(c, msgLoginFailed)
	}
	if loginID > 0 {
		return jsonFail(c, msgAlreadyLoggedIn)
	}

	name := strings.TrimSpace(c.FormValue("name"))
	password := c.FormValue("password")
	answer := c.FormValue("captcha")
	switch {
	case name == "":
		return jsonFail(c, msgNameRequired)
	case password == "":
		return jsonFail(c, msgPasswordRequired)
	case answer == "":
		return jsonFail(c, msgCaptchaRequired)
	case len(answer) < sec.ChallengeLength:
		return jsonFail(c, msgCaptchaBadLength)
	}

	bound, err := sess.Challenge(ctx)
	if err != nil {
		return jsonFail(c, msgLoginFailed)
	}
	// one verification attempt per issued challenge
	if err := sess.ClearChallenge(ctx); err != nil {
		h.logger.WarnContext(ctx, "failed to invalidate challenge", slog.Any("error", err))
	}
	if bound == "" || !strings.EqualFold(answer, bound) {
		return jsonFail(c, msgCaptchaWrong)
	}

	user, err := h.store.GetUserByName(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return jsonFail(c, msgBadCredentials)
	}
	if err != nil {
		return jsonFail(c, msgLoginFailed)
	}

	privPEM, err := sess.AuthKey(ctx)
	if err != nil {
		return jsonFail(c, msgLoginFailed)
	}
	// a decryption failure leaves plaintext empty, which then fails the hash
	// comparison; the client never learns which step rejected it
	var plaintext []byte
	if ciphertext, err := base64.StdEncoding.DecodeString(password); err == nil && len(privPEM) > 0 {
		if p, err := sec.Decrypt(privPEM, ciphertext); err == nil {
			plaintext = p
		}
	}
	err = sec.ComparePassword(plaintext, user.PasswordHash)
	sec.Zero(plaintext)
	sec.Zero(privPEM)
	if err != nil {
		return jsonFail(c, msgBadCredentials)
	}

	if !user.Active() {
		return jsonFail(c, msgAccountDisabled)
	}

	if err := sess.SetLoginID(ctx, user.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to establish session identity", slog.Any("error", err))
		return jsonFail(c, msgLoginFailed)
	}
	if err := sess.ClearAuthKey(ctx); err != nil {
		h.logger.WarnContext(ctx, "failed to remove login key", slog.Any("error", err))
	}

	return jsonOK(c, msgLoginSuccess, "")
}

// logout clears the session identity and redirects to the login page. Logging
// out twice is a no-op on the second call.
func (h handler) logout(c echo.Context) error {
	ctx := c.Request().Context()
	sess := session.FromContext(c)

	if id, err := sess.LoginID(ctx); err == nil && id > 0 {
		if err := sess.ClearLoginID(ctx); err != nil {
			h.logger.WarnContext(ctx, "failed to clear session identity", slog.Any("error", err))
		}
	}
	return c.Redirect(http.StatusFound, loginPath)
}
