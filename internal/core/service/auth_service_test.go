package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	users := NewStaticUsers(
		domain.User{Username: "carol", PasswordHash: hashPassword(t, "s3cret"), Role: domain.RoleAdmin},
		domain.User{Username: "dave", PasswordHash: hashPassword(t, "goodpass"), Role: domain.RoleViewer},
		domain.User{Username: "nohash", Role: domain.RoleAdmin},
	)
	return NewAuthService(users, "secret", time.Hour)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuth(t)

	token, user, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleAdmin {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
	if claims["username"] != "carol" {
		t.Fatalf("expected username claim, got %v", claims["username"])
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc := newTestAuth(t)

	if _, _, err := svc.Login(context.Background(), "dave", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUserLooksLikeBadPassword(t *testing.T) {
	svc := newTestAuth(t)

	if _, _, err := svc.Login(context.Background(), "ghost", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nohash", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("user without hash should not be loaded, got %v", err)
	}
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	svc := newTestAuth(t)

	if _, _, err := svc.Login(context.Background(), "", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserChain_FirstMatchWins(t *testing.T) {
	chain := UserChain{
		NewStaticUsers(domain.User{Username: "carol", PasswordHash: "h1", Role: domain.RoleViewer}),
		NewStaticUsers(
			domain.User{Username: "carol", PasswordHash: "h2", Role: domain.RoleAdmin},
			domain.User{Username: "erin", PasswordHash: "h3", Role: domain.RoleAdmin},
		),
	}

	u, err := chain.FindByUsername(context.Background(), "carol")
	if err != nil || u.Role != domain.RoleViewer {
		t.Fatalf("expected first repository to win, got %+v, %v", u, err)
	}
	if u, err := chain.FindByUsername(context.Background(), "erin"); err != nil || u.PasswordHash != "h3" {
		t.Fatalf("expected fallback match, got %+v, %v", u, err)
	}
	if _, err := chain.FindByUsername(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
