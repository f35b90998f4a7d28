// Package webhook is the inbound gateway: it verifies GitHub webhook
// signatures, classifies events, and dispatches review work asynchronously.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

const signaturePrefix = "sha256="

// VerifySignature checks a GitHub X-Hub-Signature-256 header against the raw
// request body. The expected digest is HMAC-SHA-256 over the body keyed with
// the shared secret, formatted as "sha256=<hex>".
//
// Fails closed: missing header, missing body, or a header of the wrong length
// all return false. Lengths are compared before the constant-time comparison
// so a malformed header can never panic the comparator.
func VerifySignature(secret string, body []byte, header string) bool {
	if header == "" || len(body) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

	if len(header) != len(expected) {
		return false
	}
	return hmac.Equal([]byte(header), []byte(expected))
}
