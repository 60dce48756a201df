package utils

import (
	"testing"
	"time"
)

func TestResetTokenRoundTrip(t *testing.T) {
	m, err := NewManager("test-key")
	if err != nil {
		t.Fatal(err)
	}

	token, err := m.NewResetToken(42, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	userID, err := m.ParseResetToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42 got %d", userID)
	}
}

func TestParseResetTokenRejectsExpired(t *testing.T) {
	m, _ := NewManager("test-key")
	token, err := m.NewResetToken(42, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ParseResetToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseResetTokenRejectsAccessToken(t *testing.T) {
	m, _ := NewManager("test-key")
	token, err := m.NewAccessToken(42, 3, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ParseResetToken(token); err == nil {
		t.Fatal("expected an access token to be rejected as reset token")
	}
}

func TestNewRefreshTokenIsUnique(t *testing.T) {
	m, _ := NewManager("test-key")
	a, err := m.NewRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.NewRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	if a == b || len(a) != 64 {
		t.Fatalf("expected distinct 64-char tokens, got %q and %q", a, b)
	}
}

func TestNewManagerRejectsEmptyKey(t *testing.T) {
	if _, err := NewManager(""); err == nil {
		t.Fatal("expected an error for an empty signing key")
	}
}
