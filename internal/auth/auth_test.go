package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManager_GenerateValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Errorf("Expected user-1, got %s", claims.UserID())
	}
	if claims.Email != "a@x.com" {
		t.Errorf("Expected a@x.com, got %s", claims.Email)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	otherSecret, _ := NewJWTManager("other-secret", time.Hour).Generate("user-1", "")
	expired, _ := NewJWTManager("test-secret", -time.Minute).Generate("user-1", "")

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte("test-secret"))

	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"other secret", otherSecret},
		{"expired", expired},
		{"no subject", noSubject},
		{"no expiry", noExpiry},
		{"wrong algorithm", wrongAlg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestDispatchToken(t *testing.T) {
	hash, err := HashDispatchToken("a-long-dispatch-token")
	if err != nil {
		t.Fatalf("HashDispatchToken failed: %v", err)
	}

	d, err := NewDispatchToken(hash)
	if err != nil {
		t.Fatalf("NewDispatchToken failed: %v", err)
	}
	if !d.Verify("a-long-dispatch-token") {
		t.Error("Expected matching token to verify")
	}
	if d.Verify("wrong-token") {
		t.Error("Expected wrong token to fail")
	}
	if d.Verify("") {
		t.Error("Expected empty token to fail")
	}
}

func TestDispatchToken_Invalid(t *testing.T) {
	if _, err := NewDispatchToken("plaintext"); err == nil {
		t.Error("Expected error for non-bcrypt hash")
	}
	if _, err := HashDispatchToken("short"); err == nil {
		t.Error("Expected error for short token")
	}
}
