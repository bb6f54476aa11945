package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	id := uuid.New()

	token, err := svc.GenerateAccessToken(id, " Admin ")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != id || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHMACService_Rejects(t *testing.T) {
	svc := NewHMACService("secret", time.Minute)
	token, err := svc.GenerateAccessToken(uuid.New(), "member")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := NewHMACService("other-secret", time.Minute)
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for a foreign signature, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
