package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
)

// AuthService implements operator login.
type AuthService struct {
	users     ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login checks the password against the stored bcrypt hash and issues a
// signed token. Unknown users and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// StaticUsers is a UserRepository over a fixed set of operators, typically
// built from configuration.
type StaticUsers map[string]domain.User

// NewStaticUsers indexes users by username, skipping entries without a name
// or password hash.
func NewStaticUsers(users ...domain.User) StaticUsers {
	out := make(StaticUsers, len(users))
	for _, u := range users {
		if u.Username == "" || u.PasswordHash == "" {
			continue
		}
		out[u.Username] = u
	}
	return out
}

func (s StaticUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := s[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// UserChain consults each repository in order and returns the first match.
type UserChain []ports.UserRepository

func (c UserChain) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, repo := range c {
		u, err := repo.FindByUsername(ctx, username)
		if errors.Is(err, domain.ErrUserNotFound) {
			continue
		}
		return u, err
	}
	return nil, domain.ErrUserNotFound
}
