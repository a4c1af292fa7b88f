package service

import (
	"errors"
	"testing"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	// Cost 4 keeps the tests fast.
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return NewAuthService(hash, testJWTSecret)
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := HashPassword("short", 4); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	auth := newTestAuthService(t)

	token, err := auth.Login("correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := auth.ValidateToken(token); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth := newTestAuthService(t)

	for _, pw := range []string{"", "wrong horse"} {
		if _, err := auth.Login(pw); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("Login(%q): expected ErrUnauthorized, got %v", pw, err)
		}
	}
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	auth := newTestAuthService(t)
	token, err := auth.Login("correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	tests := []struct {
		name  string
		token string
		svc   *AuthService
	}{
		{"garbage", "not-a-valid-jwt", auth},
		{"tampered", token[:len(token)-5] + "XXXXX", auth},
		{"other secret", token, NewAuthService(string(auth.passwordHash), "another-secret-key-for-unit-tests-987")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.svc.ValidateToken(tc.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestAuthService_TokenExpires(t *testing.T) {
	auth := newTestAuthService(t)
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return start }

	token, err := auth.Login("correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	auth.now = func() time.Time { return start.Add(auth.SessionTTL() + time.Minute) }
	if err := auth.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}
