package sec

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	t.Parallel()

	privPEM, pubPEM, err := GenerateKeyPair(KeyBits)
	require.NoError(t, err)
	assert.Contains(t, string(privPEM), "RSA PRIVATE KEY")
	assert.Contains(t, string(pubPEM), "PUBLIC KEY")
}

func TestStripPEM(t *testing.T) {
	t.Parallel()

	_, pubPEM, err := GenerateKeyPair(KeyBits)
	require.NoError(t, err)

	stripped := StripPEM(pubPEM)
	assert.NotContains(t, stripped, "-----")
	assert.NotContains(t, stripped, "\n")
	assert.NotContains(t, stripped, " ")

	// the stripped body must still be the base64 DER of the key
	der, err := base64.StdEncoding.DecodeString(stripped)
	require.NoError(t, err)
	_, err = x509.ParsePKIXPublicKey(der)
	require.NoError(t, err)
}

func TestDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()

	privPEM, pubPEM, err := GenerateKeyPair(KeyBits)
	require.NoError(t, err)

	// encrypt the way a client would, from the public PEM
	block, _ := pem.Decode(pubPEM)
	require.NotNil(t, block)
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub.(*rsa.PublicKey), []byte("s3cret-pass"))
	require.NoError(t, err)

	plaintext, err := Decrypt(privPEM, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret-pass"), plaintext)
}

func TestDecrypt_Failures(t *testing.T) {
	t.Parallel()

	privPEM, _, err := GenerateKeyPair(KeyBits)
	require.NoError(t, err)

	t.Run("malformed ciphertext", func(t *testing.T) {
		t.Parallel()
		_, err := Decrypt(privPEM, []byte("garbage"))
		require.Error(t, err)
	})

	t.Run("key mismatch", func(t *testing.T) {
		t.Parallel()

		_, otherPub, err := GenerateKeyPair(KeyBits)
		require.NoError(t, err)
		block, _ := pem.Decode(otherPub)
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		require.NoError(t, err)
		ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub.(*rsa.PublicKey), []byte("pass"))
		require.NoError(t, err)

		_, err = Decrypt(privPEM, ciphertext)
		require.Error(t, err)
	})

	t.Run("invalid private key", func(t *testing.T) {
		t.Parallel()
		_, err := Decrypt([]byte("not a pem"), []byte{1, 2, 3})
		require.Error(t, err)
	})
}

func TestZero(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3}
	Zero(buf)
	assert.Equal(t, []byte{0, 0, 0}, buf)
}
