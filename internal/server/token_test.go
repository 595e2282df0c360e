package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestTokenRoundTrip verifies that a minted token parses back to the same
// user id.
func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := MintToken(userID, "secret", time.Hour)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	got, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got != userID {
		t.Errorf("user id = %v, want %v", got, userID)
	}
}

// TestParseTokenWrongSecret verifies that a token signed with a different
// secret is rejected.
func TestParseTokenWrongSecret(t *testing.T) {
	token, err := MintToken(uuid.New(), "secret", time.Hour)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if _, err := ParseToken(token, "other"); err == nil {
		t.Error("expected error for wrong secret")
	}
}

// TestParseTokenExpired verifies that an expired token is rejected.
func TestParseTokenExpired(t *testing.T) {
	token, err := MintToken(uuid.New(), "secret", -time.Hour)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if _, err := ParseToken(token, "secret"); err == nil {
		t.Error("expected error for expired token")
	}
}

// TestParseTokenGarbage verifies that a non-JWT string is rejected.
func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", "secret"); err == nil {
		t.Error("expected error for malformed token")
	}
}
