// Package signature implements LINE webhook signature verification.
// The platform signs the raw request body with HMAC-SHA256 over the channel
// secret and sends the base64-encoded digest in the X-Line-Signature header.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// HeaderName is the HTTP header carrying the platform signature.
const HeaderName = "X-Line-Signature"

// Sign computes the base64-encoded HMAC-SHA256 digest of body using secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is a valid signature for body under secret.
// The comparison is constant-time. A malformed or undecodable signature is
// treated as invalid; Verify never fails with an error.
func Verify(body []byte, sig, secret string) bool {
	provided, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}
