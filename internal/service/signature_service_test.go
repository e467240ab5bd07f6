package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()

	payload := svc.BuildCanonicalString("POST", "/api/v1/internal/settlements", 1700000000, "nonce-1", `{"status":"CONFIRMED"}`)
	sig := svc.Sign("watcher-secret", payload)

	assert.Len(t, sig, 64)
	assert.True(t, svc.Verify("watcher-secret", payload, sig))
}

func TestHMACSignatureService_Verify_Tampered(t *testing.T) {
	svc := NewHMACSignatureService()

	payload := svc.BuildCanonicalString("POST", "/api/v1/internal/settlements", 1700000000, "nonce-1", `{"status":"CONFIRMED"}`)
	sig := svc.Sign("watcher-secret", payload)

	tampered := svc.BuildCanonicalString("POST", "/api/v1/internal/settlements", 1700000000, "nonce-1", `{"status":"FAILED"}`)
	assert.False(t, svc.Verify("watcher-secret", tampered, sig))
	assert.False(t, svc.Verify("other-secret", payload, sig))
	assert.False(t, svc.Verify("watcher-secret", payload, "deadbeef"))
}

func TestHMACSignatureService_CanonicalStringFormat(t *testing.T) {
	svc := NewHMACSignatureService()

	got := svc.BuildCanonicalString("POST", "/x", 42, "n1", "body")
	assert.Equal(t, "POST|/x|42|n1|body", got)
}

func TestHMACSignatureService_SignDeterministic(t *testing.T) {
	svc := NewHMACSignatureService()

	s1 := svc.Sign("k", "payload")
	s2 := svc.Sign("k", "payload")
	assert.Equal(t, s1, s2)
}
