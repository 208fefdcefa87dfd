package pow

import (
	"testing"
	"time"
)

func TestGenerateProducesVerifiableToken(t *testing.T) {
	tok := Generate(1) // keep difficulty low so the test runs fast
	if !Verify(tok, 1, 5*time.Second, time.Now()) {
		t.Fatalf("generated token %+v did not verify", tok)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tok := Generate(1)
	future := time.Unix(tok.IssuedAtUnix, 0).Add(10 * time.Second)
	if Verify(tok, 1, 5*time.Second, future) {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestVerifyRejectsWrongNonce(t *testing.T) {
	tok := Generate(1)
	tampered := tok
	tampered.Nonce++
	if Verify(tampered, 1, 5*time.Second, time.Unix(tok.IssuedAtUnix, 0)) {
		t.Fatalf("expected tampered nonce to fail verification")
	}
}

func TestVerifyRejectsFutureIssuedAt(t *testing.T) {
	tok := Token{Nonce: 0, IssuedAtUnix: time.Now().Add(time.Hour).Unix()}
	if Verify(tok, 0, 5*time.Second, time.Now()) {
		t.Fatalf("expected token issued in the future to fail verification")
	}
}
