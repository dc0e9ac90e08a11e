package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testJWTSecret = "test-secret"

func newAuthFixture() (*fakeUserRepo, AuthService) {
	users := newFakeUserRepo()
	return users, NewAuthService(users, testJWTSecret, time.Hour)
}

func TestRegisterCreatesMember(t *testing.T) {
	_, svc := newAuthFixture()

	user, err := svc.Register(context.Background(), "Mara", "mara@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != "member" {
		t.Errorf("role = %q, want member", user.Role)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Mara", "mara@example.com", "hunter22"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "Impostor", "mara@example.com", "other"); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("got %v, want ErrUserAlreadyExists", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Mara", "mara@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := svc.Login(ctx, "mara@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("user ID = %s, want %s", user.ID.Hex(), registered.ID.Hex())
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked in response")
	}

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != registered.ID.Hex() {
		t.Errorf("uid claim = %q, want %q", claims.UserID, registered.ID.Hex())
	}
	if claims.Issuer != "fittrackr" {
		t.Errorf("issuer = %q, want fittrackr", claims.Issuer)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Mara", "mara@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "mara@example.com", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("wrong password: got %v, want ErrAuthenticationFailed", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("unknown email: got %v, want ErrAuthenticationFailed", err)
	}
}
