package ports

import (
	"context"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

// ClientList is a filtered client listing with its empty-state text.
type ClientList struct {
	Term  string
	Total int
	Items []domain.Client
	// Empty is set when Items is empty; it tells "nothing stored" apart from
	// "nothing matches".
	Empty string
}

// AssetList is a filtered asset listing with its empty-state text.
type AssetList struct {
	Term  string
	Total int
	Items []domain.Asset
	Empty string
}

// Allocation is one row of the client detail table.
type Allocation struct {
	Asset domain.Asset
	Value string
}

// ClientDetail is the read-only view of a client and its allocations.
type ClientDetail struct {
	Client      domain.Client
	Allocations []Allocation
	Total       string
	// AssetsError is set when the asset directory could not be loaded; the
	// client section is still shown.
	AssetsError string
}

// EditDefaults seeds the association form when editing an existing client.
type EditDefaults struct {
	Client domain.Client
	Assets []domain.AssetRef
}

// SubmitMeta carries request-scoped facts about a write.
type SubmitMeta struct {
	Token string // form submission token or Idempotency-Key; empty skips the guard
	Actor string
}

// ClientService defines the use cases behind the client and asset screens.
type ClientService interface {
	Assets() AssetDirectory
	ListClients(ctx context.Context, term string) (*ClientList, error)
	ListAssets(ctx context.Context, term string) (*AssetList, error)
	Detail(ctx context.Context, clientID string) (*ClientDetail, error)
	EditDefaults(ctx context.Context, clientID string) (*EditDefaults, error)
	Create(ctx context.Context, in domain.ClientInput, meta SubmitMeta) (*domain.Client, error)
	Update(ctx context.Context, clientID string, patch domain.ClientPatch, meta SubmitMeta) (*domain.Client, error)
}
