package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/core/view"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubDirectory struct {
	mu        sync.Mutex
	clients   []domain.Client
	assets    []domain.Asset
	held      map[string][]domain.Asset
	listErr   error
	assetsErr error
	writeErr  error
	created   []domain.ClientInput
	updates   map[string]domain.ClientPatch
}

func (d *stubDirectory) ListClients(context.Context) ([]domain.Client, error) {
	return d.clients, d.listErr
}

func (d *stubDirectory) ListAssets(context.Context) ([]domain.Asset, error) {
	return d.assets, d.assetsErr
}

func (d *stubDirectory) ListAssetsForClient(_ context.Context, id string) ([]domain.Asset, error) {
	return d.held[id], d.assetsErr
}

func (d *stubDirectory) CreateClient(_ context.Context, in domain.ClientInput) (*domain.Client, error) {
	if d.writeErr != nil {
		return nil, d.writeErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.created = append(d.created, in)
	return &domain.Client{ID: "new", Name: in.Name, Email: in.Email, Status: in.Status, AssetIDs: in.AssetIDs}, nil
}

func (d *stubDirectory) UpdateClient(_ context.Context, id string, patch domain.ClientPatch) (*domain.Client, error) {
	if d.writeErr != nil {
		return nil, d.writeErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.updates == nil {
		d.updates = make(map[string]domain.ClientPatch)
	}
	d.updates[id] = patch
	c := patch.Apply(domain.Client{ID: id})
	return &c, nil
}

type stubGuard struct {
	seen map[string]bool
	err  error
}

func (g *stubGuard) Claim(_ context.Context, token string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[token] {
		return false, nil
	}
	g.seen[token] = true
	return true, nil
}

type stubSink struct {
	changes []domain.AllocationChange
}

func (s *stubSink) Enqueue(change domain.AllocationChange) {
	s.changes = append(s.changes, change)
}

func seededDirectory() *stubDirectory {
	return &stubDirectory{
		clients: []domain.Client{
			{ID: "c1", Name: "Ana Carolina", Email: "ana@example.com", Status: domain.StatusActive, AssetIDs: []string{"a2", "gone"}},
			{ID: "c2", Name: "Bruno Mendes", Email: "bruno@corp.io", Status: domain.StatusInactive},
		},
		assets: []domain.Asset{
			{ID: "a1", Name: "Tesouro Selic", CurrentValue: decimal.RequireFromString("1000")},
			{ID: "a2", Name: "CDB Banco", CurrentValue: decimal.RequireFromString("250.5")},
		},
		held: map[string][]domain.Asset{
			"c1": {{ID: "a2", Name: "CDB Banco"}},
		},
	}
}

func newClientSvc(dir *stubDirectory, guard ports.SubmissionGuard, sink ports.AuditSink) *ClientService {
	return NewClientService(dir, NewInputValidator(), guard, sink, zerolog.Nop())
}

func validCreate() domain.ClientInput {
	return domain.ClientInput{
		Name:     "Maria Fernanda",
		Email:    "maria@example.com",
		Status:   domain.StatusActive,
		AssetIDs: []string{"a1", "a1", " ", "a2"},
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func TestListClients_FilterAndEmptyState(t *testing.T) {
	svc := newClientSvc(seededDirectory(), nil, nil)

	list, err := svc.ListClients(context.Background(), "CORP")
	if err != nil {
		t.Fatalf("ListClients returned error: %v", err)
	}
	if list.Total != 2 || len(list.Items) != 1 || list.Items[0].ID != "c2" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list.Empty != "" {
		t.Fatalf("expected no empty state, got %q", list.Empty)
	}

	list, _ = svc.ListClients(context.Background(), "zzz")
	if list.Empty != view.NoClientsMatched {
		t.Fatalf("expected %q, got %q", view.NoClientsMatched, list.Empty)
	}
}

func TestListClients_BackendError(t *testing.T) {
	dir := seededDirectory()
	dir.listErr = &domain.BackendError{Op: "list_clients", Err: errors.New("connection refused")}
	svc := newClientSvc(dir, nil, nil)

	_, err := svc.ListClients(context.Background(), "")
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestListAssets_EmptyDirectory(t *testing.T) {
	svc := newClientSvc(&stubDirectory{}, nil, nil)

	list, err := svc.ListAssets(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAssets returned error: %v", err)
	}
	if list.Empty != view.NoAssetsStored {
		t.Fatalf("expected %q, got %q", view.NoAssetsStored, list.Empty)
	}
}

func TestDetail_IntersectsDirectory(t *testing.T) {
	svc := newClientSvc(seededDirectory(), nil, nil)

	d, err := svc.Detail(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if len(d.Allocations) != 1 || d.Allocations[0].Asset.ID != "a2" {
		t.Fatalf("unexpected allocations: %+v", d.Allocations)
	}
	if d.Allocations[0].Value != "R$ 250,50" || d.Total != "R$ 250,50" {
		t.Fatalf("unexpected money formatting: %q / %q", d.Allocations[0].Value, d.Total)
	}
}

func TestDetail_NotFound(t *testing.T) {
	svc := newClientSvc(seededDirectory(), nil, nil)

	if _, err := svc.Detail(context.Background(), "nope"); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestDetail_AssetFailureDegrades(t *testing.T) {
	dir := seededDirectory()
	dir.assetsErr = &domain.BackendError{Op: "list_assets", Status: 500, Message: "indisponível"}
	svc := newClientSvc(dir, nil, nil)

	d, err := svc.Detail(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if d.AssetsError != "indisponível" || len(d.Allocations) != 0 {
		t.Fatalf("unexpected degraded detail: %+v", d)
	}
}

func TestEditDefaults_ObjectRefs(t *testing.T) {
	svc := newClientSvc(seededDirectory(), nil, nil)

	def, err := svc.EditDefaults(context.Background(), "c1")
	if err != nil {
		t.Fatalf("EditDefaults returned error: %v", err)
	}
	if def.Client.ID != "c1" {
		t.Fatalf("unexpected client: %+v", def.Client)
	}
	if len(def.Assets) != 1 || def.Assets[0].Kind != domain.RefObject {
		t.Fatalf("expected one object ref, got %+v", def.Assets)
	}
	if ids := domain.NormalizeRefs(def.Assets); len(ids) != 1 || ids[0] != "a2" {
		t.Fatalf("unexpected normalized ids: %v", ids)
	}
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

func TestCreate_NormalizesAndAudits(t *testing.T) {
	dir := seededDirectory()
	sink := &stubSink{}
	svc := newClientSvc(dir, &stubGuard{}, sink)

	created, err := svc.Create(context.Background(), validCreate(), ports.SubmitMeta{Token: "t1", Actor: "carol"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != "new" {
		t.Fatalf("unexpected client: %+v", created)
	}
	if got := dir.created[0].AssetIDs; len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Fatalf("expected normalized ids [a1 a2], got %v", got)
	}
	if len(sink.changes) != 1 || sink.changes[0].Action != domain.ActionCreate || sink.changes[0].Actor != "carol" {
		t.Fatalf("unexpected audit: %+v", sink.changes)
	}
}

func TestCreate_ValidationBlocksSubmission(t *testing.T) {
	dir := seededDirectory()
	svc := newClientSvc(dir, nil, nil)

	in := validCreate()
	in.Name = "Curto"
	_, err := svc.Create(context.Background(), in, ports.SubmitMeta{})

	fe, ok := domain.AsFieldErrors(err)
	if !ok || fe.First("nome") == "" {
		t.Fatalf("expected field errors for nome, got %v", err)
	}
	if len(dir.created) != 0 {
		t.Fatalf("directory must not be called on invalid input")
	}
}

func TestCreate_DuplicateToken(t *testing.T) {
	dir := seededDirectory()
	svc := newClientSvc(dir, &stubGuard{}, nil)
	meta := ports.SubmitMeta{Token: "same"}

	if _, err := svc.Create(context.Background(), validCreate(), meta); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), validCreate(), meta); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
	if len(dir.created) != 1 {
		t.Fatalf("expected one create, got %d", len(dir.created))
	}
}

func TestCreate_GuardFailureStillWrites(t *testing.T) {
	dir := seededDirectory()
	svc := newClientSvc(dir, &stubGuard{err: errors.New("redis down")}, nil)

	if _, err := svc.Create(context.Background(), validCreate(), ports.SubmitMeta{Token: "t"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
}

func TestCreate_BackendErrorKeepsMessage(t *testing.T) {
	dir := seededDirectory()
	dir.writeErr = &domain.BackendError{Op: "create_client", Status: 400, Message: "Email já cadastrado"}
	sink := &stubSink{}
	svc := newClientSvc(dir, nil, sink)

	_, err := svc.Create(context.Background(), validCreate(), ports.SubmitMeta{})
	if got := domain.Describe(err); got != "Email já cadastrado" {
		t.Fatalf("expected backend message, got %q", got)
	}
	if len(sink.changes) != 0 {
		t.Fatalf("failed writes must not be audited")
	}
}

func TestUpdate_PartialPatchValidatedAgainstStoredRecord(t *testing.T) {
	dir := seededDirectory()
	sink := &stubSink{}
	svc := newClientSvc(dir, nil, sink)

	status := domain.StatusInactive
	if _, err := svc.Update(context.Background(), "c1", domain.ClientPatch{Status: &status}, ports.SubmitMeta{}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got := dir.updates["c1"]; got.Name != nil || got.Status == nil {
		t.Fatalf("patch should carry status only, got %+v", got)
	}
	if len(sink.changes) != 1 || sink.changes[0].Action != domain.ActionUpdate {
		t.Fatalf("unexpected audit: %+v", sink.changes)
	}

	bad := "x"
	_, err := svc.Update(context.Background(), "c1", domain.ClientPatch{Name: &bad}, ports.SubmitMeta{})
	if _, ok := domain.AsFieldErrors(err); !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
}

func TestUpdate_FullPatch(t *testing.T) {
	dir := seededDirectory()
	svc := newClientSvc(dir, nil, nil)

	in := validCreate()
	patch := in.Patch()
	if _, err := svc.Update(context.Background(), "c2", patch, ports.SubmitMeta{}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if ids := *dir.updates["c2"].AssetIDs; len(ids) != 2 {
		t.Fatalf("expected normalized ids, got %v", ids)
	}
}

func TestUpdate_Errors(t *testing.T) {
	svc := newClientSvc(seededDirectory(), nil, nil)

	if _, err := svc.Update(context.Background(), "c1", domain.ClientPatch{}, ports.SubmitMeta{}); !errors.Is(err, domain.ErrEmptyPatch) {
		t.Fatalf("expected ErrEmptyPatch, got %v", err)
	}

	status := domain.StatusActive
	if _, err := svc.Update(context.Background(), "ghost", domain.ClientPatch{Status: &status}, ports.SubmitMeta{}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}
