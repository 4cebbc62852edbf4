package ports

import (
	"context"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

// AssetDirectory lists the financial assets available for allocation.
type AssetDirectory interface {
	ListAssets(ctx context.Context) ([]domain.Asset, error)
}

// ClientDirectory is the persistence boundary for clients. The backend is
// authoritative: ids are assigned there and writes are last-write-wins.
type ClientDirectory interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	CreateClient(ctx context.Context, in domain.ClientInput) (*domain.Client, error)
	UpdateClient(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error)
	ListAssetsForClient(ctx context.Context, clientID string) ([]domain.Asset, error)
}

// Directory is a provider serving both clients and assets.
type Directory interface {
	AssetDirectory
	ClientDirectory
}
