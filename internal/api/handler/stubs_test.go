package handler

import (
	"context"
	"sync/atomic"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubAssets struct {
	assets []domain.Asset
	err    error
	// calls counts directory fetches when set.
	calls *atomic.Int32
}

func (s stubAssets) ListAssets(context.Context) ([]domain.Asset, error) {
	if s.calls != nil {
		s.calls.Add(1)
	}
	return s.assets, s.err
}

type stubClientService struct {
	assets         stubAssets
	listClientsFn  func(ctx context.Context, term string) (*ports.ClientList, error)
	listAssetsFn   func(ctx context.Context, term string) (*ports.AssetList, error)
	detailFn       func(ctx context.Context, id string) (*ports.ClientDetail, error)
	editDefaultsFn func(ctx context.Context, id string) (*ports.EditDefaults, error)
	createFn       func(ctx context.Context, in domain.ClientInput, meta ports.SubmitMeta) (*domain.Client, error)
	updateFn       func(ctx context.Context, id string, patch domain.ClientPatch, meta ports.SubmitMeta) (*domain.Client, error)
}

func (s *stubClientService) Assets() ports.AssetDirectory { return s.assets }

func (s *stubClientService) ListClients(ctx context.Context, term string) (*ports.ClientList, error) {
	return s.listClientsFn(ctx, term)
}

func (s *stubClientService) ListAssets(ctx context.Context, term string) (*ports.AssetList, error) {
	return s.listAssetsFn(ctx, term)
}

func (s *stubClientService) Detail(ctx context.Context, id string) (*ports.ClientDetail, error) {
	return s.detailFn(ctx, id)
}

func (s *stubClientService) EditDefaults(ctx context.Context, id string) (*ports.EditDefaults, error) {
	return s.editDefaultsFn(ctx, id)
}

func (s *stubClientService) Create(ctx context.Context, in domain.ClientInput, meta ports.SubmitMeta) (*domain.Client, error) {
	return s.createFn(ctx, in, meta)
}

func (s *stubClientService) Update(ctx context.Context, id string, patch domain.ClientPatch, meta ports.SubmitMeta) (*domain.Client, error) {
	return s.updateFn(ctx, id, patch, meta)
}

// acceptAll is an InputValidator that never fails.
type acceptAll struct{}

func (acceptAll) ValidateInput(domain.ClientInput) error { return nil }
