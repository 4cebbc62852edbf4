package ports

import (
	"context"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

// UserRepository looks up operators by username.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthService authenticates operators of the admin interface.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
