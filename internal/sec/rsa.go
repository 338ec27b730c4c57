package sec

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

// KeyBits is the RSA modulus size for the ephemeral login keypair. The key
// lives for a single login attempt, so transport compatibility with in-browser
// encryption matters more than long-term strength.
const KeyBits = 1024

// GenerateKeyPair returns a fresh RSA keypair as PEM-encoded private (PKCS#1)
// and public (PKIX) keys.
func GenerateKeyPair(bits int) (privPEM, pubPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	privPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	pubPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	return privPEM, pubPEM, nil
}

// StripPEM removes the PEM envelope and all whitespace from a key, leaving the
// bare base64 body expected by in-browser RSA implementations.
func StripPEM(keyPEM []byte) string {
	var body strings.Builder
	for line := range strings.Lines(string(keyPEM)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-----") {
			continue
		}
		body.WriteString(line)
	}
	return body.String()
}

// Decrypt recovers the plaintext from an RSA PKCS#1 v1.5 ciphertext using the
// PEM-encoded private key. Callers must treat a failure as equivalent to a
// wrong password and never surface a distinct error to the client.
func Decrypt(privPEM, ciphertext []byte) ([]byte, error) {
	block, _ := pem.Decode(privPEM)
	if block == nil {
		return nil, errors.New("invalid private key PEM")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, key, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// Zero overwrites sensitive byte material in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
