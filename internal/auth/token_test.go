package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParsePair(t *testing.T) {
	m := NewTokenManager("test-secret", 24*time.Hour, 30*24*time.Hour)

	pair, err := m.GeneratePair(42, "falcon")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("GeneratePair() returned empty token")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens should differ in expiry")
	}

	for _, token := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := m.Parse(token)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if claims.ID != 42 {
			t.Errorf("claims.ID = %d, want 42", claims.ID)
		}
		if claims.Nickname != "falcon" {
			t.Errorf("claims.Nickname = %q, want falcon", claims.Nickname)
		}
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := NewTokenManager("secret-a", time.Hour, time.Hour)
	other := NewTokenManager("secret-b", time.Hour, time.Hour)

	pair, err := m.GeneratePair(1, "nick")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}
	if _, err := other.Parse(pair.AccessToken); err == nil {
		t.Error("Parse() accepted token signed with a different secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute, -time.Minute)

	pair, err := m.GeneratePair(1, "nick")
	if err != nil {
		t.Fatalf("GeneratePair() error = %v", err)
	}
	if _, err := m.Parse(pair.AccessToken); err == nil {
		t.Error("Parse() accepted expired token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, time.Hour)
	if _, err := m.Parse("not-a-token"); err == nil {
		t.Error("Parse() accepted garbage")
	}
}

func TestHasher(t *testing.T) {
	h := NewHasher(4) // minimum cost keeps the test fast

	hash, err := h.Hash("s3cret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !h.Verify(hash, "s3cret-password") {
		t.Error("Verify() rejected correct password")
	}
	if h.Verify(hash, "wrong-password") {
		t.Error("Verify() accepted wrong password")
	}
}
