package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrMissingSecret indicates the verifier was constructed without a shared secret.
var ErrMissingSecret = errors.New("webhook secret is required")

var signaturePrefixes = []string{"sha256=", "hmac-sha256="}

// SignatureVerifier authenticates raw webhook bodies with HMAC-SHA256.
// It operates on the exact bytes as transmitted; re-serialized payloads
// would produce a different digest.
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier constructs a verifier. An empty secret is a
// configuration error and must abort startup, not be deferred to requests.
func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &SignatureVerifier{secret: []byte(secret)}, nil
}

// Sign returns the hex-encoded HMAC-SHA256 digest of body.
func (v *SignatureVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether candidate matches the digest of body. Scheme
// prefixes like "sha256=" are stripped case-insensitively. Candidates that
// do not decode as hex fail verification rather than erroring.
func (v *SignatureVerifier) Verify(body []byte, candidate string) bool {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	if len(body) == 0 || candidate == "" {
		return false
	}
	for _, prefix := range signaturePrefixes {
		if strings.HasPrefix(candidate, prefix) {
			candidate = strings.TrimPrefix(candidate, prefix)
			break
		}
	}

	presented, err := hex.DecodeString(candidate)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hmac.Equal(presented, mac.Sum(nil))
}

// VerifyHeader verifies a signature header that may carry several
// comma-separated candidates (secret rotation); any match succeeds.
func (v *SignatureVerifier) VerifyHeader(body []byte, header string) bool {
	if strings.TrimSpace(header) == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		if v.Verify(body, candidate) {
			return true
		}
	}
	return false
}
