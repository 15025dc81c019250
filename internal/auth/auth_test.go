package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestService() *Service {
	return NewService("test-secret", time.Hour)
}

func TestHashAndCheckPassword(t *testing.T) {
	s := newTestService()

	hash, err := s.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "testpassword123" {
		t.Fatal("hash equals the plaintext password")
	}
	if !s.CheckPassword("testpassword123", hash) {
		t.Error("correct password rejected")
	}
	if s.CheckPassword("wrongpassword", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService()

	token, err := s.GenerateToken("ram", true)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "ram" || !claims.Admin {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	s := newTestService()

	if _, err := s.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token err = %v, want ErrInvalidToken", err)
	}

	other := NewService("other-secret", time.Hour)
	token, err := other.GenerateToken("ram", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong-secret token err = %v, want ErrInvalidToken", err)
	}

	expired := NewService("test-secret", -time.Minute)
	token, err = expired.GenerateToken("ram", false)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired token err = %v, want ErrExpiredToken", err)
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc123", "abc123", false},
		{"empty", "", "", true},
		{"no scheme", "abc123", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"missing token", "Bearer ", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractToken(tc.header)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("err = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractToken: %v", err)
			}
			if got != tc.want {
				t.Errorf("token = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateUsernameAndPassword(t *testing.T) {
	if err := ValidateUsername("ram"); err != nil {
		t.Errorf("valid username rejected: %v", err)
	}
	if err := ValidateUsername("ab"); err == nil {
		t.Error("short username accepted")
	}
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateUsername(string(long)); err == nil {
		t.Error("long username accepted")
	}

	if err := ValidatePassword("longenough1"); err != nil {
		t.Errorf("valid password rejected: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("short password accepted")
	}
}
