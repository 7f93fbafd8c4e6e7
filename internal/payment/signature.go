package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// Signature computes the keyed hash the provider attaches to webhook
// deliveries: HMAC-SHA512 of the raw request body under the shared
// secret, hex-encoded.
func Signature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature header against the raw
// body.  The comparison is constant-time so the check does not leak
// how many leading characters of a forged signature were correct.
func VerifySignature(secret string, body []byte, header string) bool {
	if header == "" {
		return false
	}
	expected := Signature(secret, body)
	return hmac.Equal([]byte(expected), []byte(header))
}
