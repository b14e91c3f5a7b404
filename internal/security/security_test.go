package security

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" || hash == "hunter2" {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if errCheck := bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")); errCheck != nil {
		t.Fatalf("expected password to verify, got %v", errCheck)
	}
	if errCheck := bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")); errCheck == nil {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestGenerateSecretsAreUnique(t *testing.T) {
	a, err := GenerateTokenSecret()
	if err != nil {
		t.Fatalf("GenerateTokenSecret: %v", err)
	}
	b, err := GenerateTokenSecret()
	if err != nil {
		t.Fatalf("GenerateTokenSecret: %v", err)
	}
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty secrets, got %q and %q", a, b)
	}

	sid, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID: %v", err)
	}
	if sid == "" {
		t.Fatalf("expected non-empty session id")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	signed, err := SignSessionToken("secret", "session-123", time.Hour)
	if err != nil {
		t.Fatalf("SignSessionToken: %v", err)
	}

	sessionID, err := ParseSessionToken("secret", signed)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if sessionID != "session-123" {
		t.Fatalf("expected session id %q, got %q", "session-123", sessionID)
	}
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	signed, err := SignSessionToken("secret", "session-123", time.Hour)
	if err != nil {
		t.Fatalf("SignSessionToken: %v", err)
	}
	if _, errParse := ParseSessionToken("other-secret", signed); errParse == nil {
		t.Fatalf("expected parse with wrong secret to fail")
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	signed, err := SignSessionToken("secret", "session-123", -time.Minute)
	if err != nil {
		t.Fatalf("SignSessionToken: %v", err)
	}
	if _, errParse := ParseSessionToken("secret", signed); errParse == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestParseSessionToken_Garbage(t *testing.T) {
	if _, err := ParseSessionToken("secret", "not-a-token"); err == nil {
		t.Fatalf("expected garbage token to fail")
	}
}
