package services

import (
	"strings"
	"testing"
)

func TestNewSignatureVerifierRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewSignatureVerifier(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewSignatureVerifier("   "); err == nil {
		t.Fatal("expected error for blank secret")
	}
	if _, err := NewSignatureVerifier("s3cret"); err != nil {
		t.Fatalf("expected no error for valid secret, got %v", err)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	v, err := NewSignatureVerifier("s3cret")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	body := []byte(`{"event_id":"evt_1","event_type":"payment_captured","payment_id":"pay_9"}`)
	if !v.Verify(body, v.Sign(body)) {
		t.Fatal("signature of the exact body must verify")
	}
}

func TestVerifyRejectsTamperedBodyAndSignature(t *testing.T) {
	t.Parallel()

	v, _ := NewSignatureVerifier("s3cret")
	body := []byte(`{"event_id":"evt_1"}`)
	sig := v.Sign(body)

	tampered := []byte(`{"event_id":"evt_2"}`)
	if v.Verify(tampered, sig) {
		t.Fatal("altered body must not verify")
	}

	flipped := []byte(sig)
	if flipped[0] == 'a' {
		flipped[0] = 'b'
	} else {
		flipped[0] = 'a'
	}
	if v.Verify(body, string(flipped)) {
		t.Fatal("altered signature must not verify")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer, _ := NewSignatureVerifier("secret-a")
	verifier, _ := NewSignatureVerifier("secret-b")

	body := []byte(`{"event_id":"evt_1"}`)
	if verifier.Verify(body, signer.Sign(body)) {
		t.Fatal("signature from another secret must not verify")
	}
}

func TestVerifyStripsSchemePrefixes(t *testing.T) {
	t.Parallel()

	v, _ := NewSignatureVerifier("s3cret")
	body := []byte(`{"event_id":"evt_1"}`)
	sig := v.Sign(body)

	for _, prefixed := range []string{"sha256=" + sig, "SHA256=" + strings.ToUpper(sig), "hmac-sha256=" + sig} {
		if !v.Verify(body, prefixed) {
			t.Fatalf("prefixed signature %q must verify", prefixed[:16])
		}
	}
}

func TestVerifyNeverErrorsOnGarbageInput(t *testing.T) {
	t.Parallel()

	v, _ := NewSignatureVerifier("s3cret")
	body := []byte(`{"event_id":"evt_1"}`)

	for _, candidate := range []string{"", "zzzz", "abc", "md5=deadbeef", "sha256=nothex", "sha256="} {
		if v.Verify(body, candidate) {
			t.Fatalf("candidate %q must fail verification", candidate)
		}
	}
	if v.Verify(nil, v.Sign(nil)) {
		t.Fatal("missing body must fail verification")
	}
}

func TestVerifyHeaderAcceptsAnyMatchingCandidate(t *testing.T) {
	t.Parallel()

	v, _ := NewSignatureVerifier("s3cret")
	body := []byte(`{"event_id":"evt_1"}`)
	sig := v.Sign(body)

	header := "sha256=deadbeef, sha256=" + sig
	if !v.VerifyHeader(body, header) {
		t.Fatal("header with one valid candidate must verify")
	}
	if v.VerifyHeader(body, "sha256=deadbeef, sha256=cafef00d") {
		t.Fatal("header with no valid candidate must fail")
	}
	if v.VerifyHeader(body, "") {
		t.Fatal("empty header must fail")
	}
}
