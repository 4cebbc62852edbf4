package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/core/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubAssets answers ListAssets once release is closed (immediately when nil).
type stubAssets struct {
	assets  []domain.Asset
	err     error
	release chan struct{}
}

func (s *stubAssets) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	if s.release != nil {
		<-s.release
	}
	return s.assets, s.err
}

func directory() *stubAssets {
	return &stubAssets{assets: []domain.Asset{
		{ID: "a1", Name: "Tesouro Selic"},
		{ID: "a2", Name: "CDB Banco"},
		{ID: "42", Name: "LCI"},
	}}
}

func newForm() *Form {
	return New(service.NewInputValidator())
}

func mustAwait(t *testing.T, f *Form) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.Await(ctx))
}

func editDefaults(refs ...domain.AssetRef) *ports.EditDefaults {
	return &ports.EditDefaults{
		Client: domain.Client{ID: "c1", Name: "Ana Carolina", Email: "ana@example.com", Status: domain.StatusInactive},
		Assets: refs,
	}
}

func TestInitialize_NewClient(t *testing.T) {
	f := newForm()
	f.Initialize(context.Background(), directory(), nil)
	mustAwait(t, f)

	v := f.View()
	assert.False(t, v.Editing)
	assert.Equal(t, Ready, v.State)
	assert.Equal(t, domain.StatusActive, v.Values.Status)
	assert.Empty(t, v.Values.AssetIDs)
	require.Len(t, v.Options, 3)
	assert.Empty(t, v.EmptyLabel)
}

func TestInitialize_NormalizesMixedDefaults(t *testing.T) {
	f := newForm()
	f.Initialize(context.Background(), directory(), editDefaults(
		domain.StringRef("a1"),
		domain.ObjectRef("a2", nil),
		domain.ObjectRef("42", nil),
		domain.AssetRef{},
		domain.StringRef(""),
		domain.StringRef("a1"),
		domain.StringRef("legacy"),
	))

	// Defaults are usable before the directory resolves.
	if diff := cmp.Diff([]string{"a1", "a2", "42", "legacy"}, f.Selected()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	mustAwait(t, f)
	v := f.View()
	assert.True(t, v.Editing)
	assert.Equal(t, "c1", v.ClientID)
	assert.Equal(t, []string{"a1", "a2", "42", "legacy"}, v.Values.AssetIDs)

	// Ids unknown to the directory stay selected and are rendered last.
	require.Len(t, v.Options, 4)
	last := v.Options[3]
	assert.Equal(t, Option{ID: "legacy", Label: "legacy", Selected: true}, last)
}

func TestToggle_OrderAndIdempotence(t *testing.T) {
	f := newForm()
	f.Initialize(context.Background(), directory(), nil)
	mustAwait(t, f)

	f.Toggle("a2")
	f.Toggle(" a1 ")
	f.Toggle("")
	assert.Equal(t, []string{"a2", "a1"}, f.Selected())

	f.Toggle("a2")
	assert.Equal(t, []string{"a1"}, f.Selected())

	f.Toggle("a2")
	f.Toggle("a2")
	assert.Equal(t, []string{"a1"}, f.Selected())
}

func TestResolve_KeepsTouchedSelection(t *testing.T) {
	dir := directory()
	dir.release = make(chan struct{})

	f := newForm()
	f.Initialize(context.Background(), dir, editDefaults(domain.StringRef("a1")))
	assert.Equal(t, Loading, f.View().State)
	assert.Equal(t, LoadingLabel, f.View().EmptyLabel)

	f.Toggle("a1")
	f.Toggle("a2")
	close(dir.release)
	mustAwait(t, f)

	assert.Equal(t, Ready, f.View().State)
	assert.Equal(t, []string{"a2"}, f.Selected())
}

func TestCancel_IgnoresLateDirectory(t *testing.T) {
	dir := directory()
	dir.release = make(chan struct{})

	f := newForm()
	f.Initialize(context.Background(), dir, editDefaults(domain.StringRef("a1")))

	cancelled := false
	f.Cancel(func() { cancelled = true })
	close(dir.release)
	mustAwait(t, f)

	v := f.View()
	assert.True(t, cancelled)
	assert.True(t, v.Closed)
	assert.Equal(t, Loading, v.State, "late response must not be applied")
	assert.Empty(t, v.Options)
	assert.Empty(t, v.Values.Name)

	err := f.Submit(context.Background(), func(context.Context, domain.ClientInput) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestResolve_IgnoredAfterContextEnds(t *testing.T) {
	dir := directory()
	dir.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	f := newForm()
	f.Initialize(ctx, dir, nil)
	cancel()
	close(dir.release)
	mustAwait(t, f)

	assert.Equal(t, Loading, f.View().State)
}

func TestAwait_ContextDeadline(t *testing.T) {
	dir := directory()
	dir.release = make(chan struct{})
	defer close(dir.release)

	f := newForm()
	f.Initialize(context.Background(), dir, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.Await(ctx), context.DeadlineExceeded)
	f.Cancel(nil)
}

func TestDirectoryFailure_Degrades(t *testing.T) {
	f := newForm()
	f.Initialize(context.Background(), &stubAssets{err: &domain.BackendError{Op: "list_assets", Message: "fora do ar"}}, editDefaults(domain.StringRef("a1")))
	mustAwait(t, f)

	v := f.View()
	assert.Equal(t, Failed, v.State)
	assert.Equal(t, UnavailableLabel, v.EmptyLabel)
	assert.Equal(t, "fora do ar", v.LoadError)
	// The default selection survives the failure.
	assert.Equal(t, []Option{{ID: "a1", Label: "a1", Selected: true}}, v.Options)
}

func TestSubmit_ValidationKeepsFormOpen(t *testing.T) {
	f := newForm()
	f.Initialize(context.Background(), directory(), nil)
	mustAwait(t, f)
	f.SetValues("Curto", "invalido", domain.StatusActive)

	called := false
	err := f.Submit(context.Background(), func(context.Context, domain.ClientInput) error {
		called = true
		return nil
	})

	_, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	assert.False(t, called)

	v := f.View()
	assert.False(t, v.Closed)
	assert.Equal(t, "Nome deve ter pelo menos 10 caracteres.", v.Errors.First("nome"))
	assert.Equal(t, "Email inválido.", v.Errors.First("email"))
	assert.Equal(t, "Curto", v.Values.Name)
}

func TestSubmit_EmitsCanonicalPayload(t *testing.T) {
	f := newForm()
	f.Initialize(context.Background(), directory(), editDefaults(domain.ObjectRef("42", nil)))
	mustAwait(t, f)
	f.SetValues("Ana Carolina Souza", "ana@example.com", domain.StatusActive)
	f.Toggle("a1")

	var got domain.ClientInput
	err := f.Submit(context.Background(), func(_ context.Context, in domain.ClientInput) error {
		got = in
		return nil
	})
	require.NoError(t, err)

	want := domain.ClientInput{
		Name:     "Ana Carolina Souza",
		Email:    "ana@example.com",
		Status:   domain.StatusActive,
		AssetIDs: []string{"42", "a1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, f.View().Closed)
}

func TestSubmit_CallbackErrorKeepsFormOpen(t *testing.T) {
	f := newForm()
	f.Initialize(context.Background(), directory(), nil)
	mustAwait(t, f)
	f.SetValues("Maria Fernanda", "maria@example.com", domain.StatusActive)

	boom := errors.New("backend down")
	err := f.Submit(context.Background(), func(context.Context, domain.ClientInput) error { return boom })
	require.ErrorIs(t, err, boom)

	v := f.View()
	assert.False(t, v.Closed)
	assert.Equal(t, "Maria Fernanda", v.Values.Name)

	// It can be submitted again.
	require.NoError(t, f.Submit(context.Background(), func(context.Context, domain.ClientInput) error { return nil }))
}

func TestSelect_NormalizesAndMarksTouched(t *testing.T) {
	dir := directory()
	dir.release = make(chan struct{})

	f := newForm()
	f.Initialize(context.Background(), dir, editDefaults(domain.StringRef("a1")))
	f.Select([]string{"a2", " ", "a2", "42"})
	close(dir.release)
	mustAwait(t, f)

	assert.Equal(t, []string{"a2", "42"}, f.Selected())
}

func TestLoad_KeepsPostedStateAndErrors(t *testing.T) {
	f := newForm()
	f.Seed(editDefaults())
	f.SetValues("Curto", "ana@example.com", domain.StatusActive)
	f.Select([]string{"a2", "zz"})

	err := f.Submit(context.Background(), func(context.Context, domain.ClientInput) error {
		t.Fatal("invalid form must not complete")
		return nil
	})
	require.Error(t, err)

	f.Load(context.Background(), directory())
	mustAwait(t, f)

	v := f.View()
	assert.Equal(t, Ready, v.State)
	assert.True(t, v.Editing)
	assert.Equal(t, "Curto", v.Values.Name)
	assert.Equal(t, []string{"a2", "zz"}, v.Values.AssetIDs)
	assert.NotEmpty(t, v.Errors.First("nome"))
}

func TestLoad_ClosedFormDoesNotFetch(t *testing.T) {
	dir := &stubAssets{release: make(chan struct{})}
	f := newForm()
	f.Seed(nil)
	f.Cancel(nil)

	f.Load(context.Background(), dir)
	require.NoError(t, f.Await(context.Background()))
	assert.Equal(t, Loading, f.View().State)
	close(dir.release)
}
