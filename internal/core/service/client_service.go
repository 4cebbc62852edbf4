package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ankatech/investor-admin/internal/api/metrics"
	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/core/view"
)

// ClientService implements ports.ClientService on top of a directory.
type ClientService struct {
	dir       ports.Directory
	validator ports.InputValidator
	guard     ports.SubmissionGuard
	audit     ports.AuditSink
	log       zerolog.Logger
	now       func() time.Time
}

var _ ports.ClientService = (*ClientService)(nil)

// NewClientService wires the use cases. guard and audit may be nil.
func NewClientService(
	dir ports.Directory,
	validator ports.InputValidator,
	guard ports.SubmissionGuard,
	audit ports.AuditSink,
	log zerolog.Logger,
) *ClientService {
	return &ClientService{
		dir:       dir,
		validator: validator,
		guard:     guard,
		audit:     audit,
		log:       log,
		now:       time.Now,
	}
}

func (s *ClientService) Assets() ports.AssetDirectory { return s.dir }

func (s *ClientService) ListClients(ctx context.Context, term string) (*ports.ClientList, error) {
	clients, err := s.dir.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	items := view.FilterClients(clients, term)
	return &ports.ClientList{
		Term:  term,
		Total: len(clients),
		Items: items,
		Empty: view.ClientsEmptyState(len(items), term),
	}, nil
}

func (s *ClientService) ListAssets(ctx context.Context, term string) (*ports.AssetList, error) {
	assets, err := s.dir.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	items := view.FilterAssets(assets, term)
	return &ports.AssetList{
		Term:  term,
		Total: len(assets),
		Items: items,
		Empty: view.AssetsEmptyState(len(items), term),
	}, nil
}

// Detail loads the client and the asset directory concurrently. A failing
// directory degrades to an empty allocation table with AssetsError set.
func (s *ClientService) Detail(ctx context.Context, clientID string) (*ports.ClientDetail, error) {
	var (
		clients   []domain.Client
		assets    []domain.Asset
		assetsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.dir.ListClients(gctx)
		return err
	})
	g.Go(func() error {
		assets, assetsErr = s.dir.ListAssets(gctx)
		if assetsErr != nil {
			assets = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("client detail: %w", err)
	}

	client, err := findClient(clients, clientID)
	if err != nil {
		return nil, err
	}

	detail := view.Detail(*client, assets)
	if assetsErr != nil {
		s.log.Warn().Err(assetsErr).Str("client_id", clientID).Msg("asset directory unavailable for detail view")
		detail.AssetsError = domain.Describe(assetsErr)
	}
	return detail, nil
}

// EditDefaults loads the client and its current allocations concurrently.
// The allocations become object references so the form normalizes them the
// same way it does any other default.
func (s *ClientService) EditDefaults(ctx context.Context, clientID string) (*ports.EditDefaults, error) {
	var (
		clients []domain.Client
		held    []domain.Asset
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.dir.ListClients(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		held, err = s.dir.ListAssetsForClient(gctx, clientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("edit defaults: %w", err)
	}

	client, err := findClient(clients, clientID)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.AssetRef, len(held))
	for i, a := range held {
		refs[i] = domain.RefFromAsset(a)
	}
	return &ports.EditDefaults{Client: *client, Assets: refs}, nil
}

// Create validates and submits a new client.
func (s *ClientService) Create(ctx context.Context, in domain.ClientInput, meta ports.SubmitMeta) (*domain.Client, error) {
	in.AssetIDs = domain.NormalizeIDs(in.AssetIDs)
	if err := s.validator.ValidateInput(in); err != nil {
		metrics.ClientWritesTotal.WithLabelValues(string(domain.ActionCreate), "invalid").Inc()
		return nil, err
	}
	if err := s.claim(ctx, domain.ActionCreate, meta.Token); err != nil {
		return nil, err
	}

	created, err := s.dir.CreateClient(ctx, in)
	if err != nil {
		metrics.ClientWritesTotal.WithLabelValues(string(domain.ActionCreate), "error").Inc()
		return nil, fmt.Errorf("create client: %w", err)
	}
	metrics.ClientWritesTotal.WithLabelValues(string(domain.ActionCreate), "ok").Inc()

	s.record(domain.ActionCreate, created.ID, in.Patch(), meta.Actor)
	s.log.Info().Str("client_id", created.ID).Str("actor", meta.Actor).Int("assets", len(in.AssetIDs)).Msg("client created")
	return created, nil
}

// Update validates the merged record and submits the patch.
func (s *ClientService) Update(ctx context.Context, clientID string, patch domain.ClientPatch, meta ports.SubmitMeta) (*domain.Client, error) {
	if patch.Empty() {
		return nil, domain.ErrEmptyPatch
	}
	if patch.AssetIDs != nil {
		ids := domain.NormalizeIDs(*patch.AssetIDs)
		patch.AssetIDs = &ids
	}

	if err := s.validatePatch(ctx, clientID, patch); err != nil {
		metrics.ClientWritesTotal.WithLabelValues(string(domain.ActionUpdate), "invalid").Inc()
		return nil, err
	}
	if err := s.claim(ctx, domain.ActionUpdate, meta.Token); err != nil {
		return nil, err
	}

	updated, err := s.dir.UpdateClient(ctx, clientID, patch)
	if err != nil {
		metrics.ClientWritesTotal.WithLabelValues(string(domain.ActionUpdate), "error").Inc()
		return nil, fmt.Errorf("update client: %w", err)
	}
	metrics.ClientWritesTotal.WithLabelValues(string(domain.ActionUpdate), "ok").Inc()

	s.record(domain.ActionUpdate, clientID, patch, meta.Actor)
	s.log.Info().Str("client_id", clientID).Str("actor", meta.Actor).Msg("client updated")
	return updated, nil
}

// validatePatch checks a full patch directly. A partial patch is applied to
// the stored record first so untouched fields are not reported.
func (s *ClientService) validatePatch(ctx context.Context, clientID string, patch domain.ClientPatch) error {
	if patch.Name != nil && patch.Email != nil && patch.Status != nil {
		return s.validator.ValidateInput(inputOf(patch.Apply(domain.Client{})))
	}

	clients, err := s.dir.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	current, err := findClient(clients, clientID)
	if err != nil {
		return err
	}
	return s.validator.ValidateInput(inputOf(patch.Apply(*current)))
}

func (s *ClientService) claim(ctx context.Context, action domain.ChangeAction, token string) error {
	if s.guard == nil || token == "" {
		return nil
	}
	first, err := s.guard.Claim(ctx, string(action)+":"+token)
	if err != nil {
		// Losing the guard must not block writes.
		s.log.Warn().Err(err).Msg("submission guard unavailable, accepting submission")
		return nil
	}
	if !first {
		metrics.ClientWritesTotal.WithLabelValues(string(action), "duplicate").Inc()
		return domain.ErrDuplicateSubmission
	}
	return nil
}

func (s *ClientService) record(action domain.ChangeAction, clientID string, patch domain.ClientPatch, actor string) {
	if s.audit == nil {
		return
	}
	change := domain.AllocationChange{
		ClientID: clientID,
		Action:   action,
		Actor:    actor,
		At:       s.now().UTC(),
	}
	if patch.Name != nil {
		change.Name = *patch.Name
	}
	if patch.Status != nil {
		change.Status = *patch.Status
	}
	if patch.AssetIDs != nil {
		change.AssetIDs = append([]string{}, *patch.AssetIDs...)
	}
	s.audit.Enqueue(change)
}

func findClient(clients []domain.Client, id string) (*domain.Client, error) {
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func inputOf(c domain.Client) domain.ClientInput {
	return domain.ClientInput{Name: c.Name, Email: c.Email, Status: c.Status, AssetIDs: c.AssetIDs}
}
