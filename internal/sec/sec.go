// Package sec provides the security primitives for the admin login flow.
//
// # Credential transport
//
// Passwords are never submitted in the clear. Each view of the login page
// generates an ephemeral RSA keypair; the public half is embedded in the page
// (PEM envelope stripped) and the private half is bound to the session. The
// client encrypts the password with the public key and submits the base64
// ciphertext, which [Decrypt] recovers server-side.
//
// # Components
//
//   - [GenerateKeyPair], [Decrypt], [StripPEM]: RSA password transport
//   - [NewChallenge]: captcha generation for anti-bot friction
//   - [HashPassword], [ComparePassword]: bcrypt password hashing utilities
package sec
