// Package form implements the client association form: field values, the
// asset multi-select and its directory loading, submission and cancellation.
//
// A Form is safe for concurrent use. The asset directory is fetched in the
// background by Initialize or Load; responses that arrive after Cancel, after a
// successful Submit, or after a newer Initialize are discarded.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
)

// ErrClosed is returned when a cancelled or submitted form is used again.
var ErrClosed = errors.New("form is closed")

// Directory option labels.
const (
	LoadingLabel     = "Carregando ativos..."
	UnavailableLabel = "Nenhum ativo disponível"
)

// DirectoryState tracks the background directory fetch.
type DirectoryState int

const (
	Loading DirectoryState = iota
	Ready
	Failed
)

func (s DirectoryState) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Option is one entry of the asset multi-select.
type Option struct {
	ID       string
	Label    string
	Selected bool
	// Known is false for selected ids the directory does not list.
	Known bool
}

// View is a consistent snapshot of the form for rendering.
type View struct {
	Values     domain.ClientInput
	Editing    bool
	ClientID   string
	State      DirectoryState
	Options    []Option
	EmptyLabel string
	LoadError  string
	Errors     domain.FieldErrors
	Closed     bool
}

// Form is the client association form.
type Form struct {
	validator ports.InputValidator

	mu       sync.Mutex
	values   domain.ClientInput
	selected []string
	index    map[string]struct{}
	touched  bool
	defaults []domain.AssetRef

	editing  bool
	clientID string

	state   DirectoryState
	assets  []domain.Asset
	loadErr error

	gen    uint64
	closed bool
	done   chan struct{}
	errs   domain.FieldErrors
}

func New(validator ports.InputValidator) *Form {
	return &Form{
		validator: validator,
		values:    domain.ClientInput{Status: domain.StatusActive},
		index:     make(map[string]struct{}),
	}
}

// Initialize seeds the form and starts fetching the asset directory. With
// nil defaults the form creates a new client.
func (f *Form) Initialize(ctx context.Context, dir ports.AssetDirectory, defaults *ports.EditDefaults) {
	f.Seed(defaults)
	f.Load(ctx, dir)
}

// Seed resets the form to defaults without touching the directory. Load must
// follow before the options can be rendered.
func (f *Form) Seed(defaults *ports.EditDefaults) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gen++
	f.closed = false
	f.touched = false
	f.errs = nil
	f.state = Loading
	f.assets = nil
	f.loadErr = nil
	f.done = nil

	if defaults != nil {
		f.editing = true
		f.clientID = defaults.Client.ID
		f.values = domain.ClientInput{
			Name:   defaults.Client.Name,
			Email:  defaults.Client.Email,
			Status: defaults.Client.Status,
		}
		f.defaults = append([]domain.AssetRef(nil), defaults.Assets...)
	} else {
		f.editing = false
		f.clientID = ""
		f.values = domain.ClientInput{Status: domain.StatusActive}
		f.defaults = nil
	}
	f.setSelection(domain.NormalizeRefs(f.defaults))
}

// Load starts fetching the asset directory in the background. Values,
// selection and field errors are kept. A closed form does not load.
func (f *Form) Load(ctx context.Context, dir ports.AssetDirectory) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	gen := f.gen
	f.state = Loading
	f.assets = nil
	f.loadErr = nil
	done := make(chan struct{})
	f.done = done
	f.mu.Unlock()

	go func() {
		defer close(done)
		assets, err := dir.ListAssets(ctx)
		f.resolve(ctx, gen, assets, err)
	}()
}

// Await blocks until the directory fetch started by Initialize resolves or
// ctx ends.
func (f *Form) Await(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Form) resolve(ctx context.Context, gen uint64, assets []domain.Asset, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.gen || ctx.Err() != nil {
		return
	}
	if err != nil {
		f.state = Failed
		f.loadErr = err
		return
	}
	f.state = Ready
	f.assets = assets
	if !f.touched {
		f.setSelection(domain.NormalizeRefs(f.defaults))
	}
}

// SetValues replaces the scalar fields. The asset selection is left alone.
func (f *Form) SetValues(name, email string, status domain.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values.Name = name
	f.values.Email = email
	f.values.Status = status
}

// Select replaces the selection with ids, normalized.
func (f *Form) Select(ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = true
	f.setSelection(domain.NormalizeIDs(ids))
}

// Toggle adds id to the selection or removes it. Blank ids are ignored.
func (f *Form) Toggle(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = true

	if _, ok := f.index[id]; !ok {
		f.index[id] = struct{}{}
		f.selected = append(f.selected, id)
		return
	}
	delete(f.index, id)
	for i, s := range f.selected {
		if s == id {
			f.selected = append(f.selected[:i:i], f.selected[i+1:]...)
			break
		}
	}
}

// Selected returns the selected ids in order of first selection.
func (f *Form) Selected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.selected...)
}

// Payload is the canonical submission built from the current state.
func (f *Form) Payload() domain.ClientInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payload()
}

func (f *Form) payload() domain.ClientInput {
	p := f.values
	p.AssetIDs = append([]string{}, f.selected...)
	return p
}

// Submit validates the form and hands the payload to onComplete. Validation
// failures and errors from onComplete leave the form open; field errors from
// either are kept for rendering. A successful submit closes the form.
func (f *Form) Submit(ctx context.Context, onComplete func(context.Context, domain.ClientInput) error) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	payload := f.payload()
	if err := f.validator.ValidateInput(payload); err != nil {
		f.errs, _ = domain.AsFieldErrors(err)
		f.mu.Unlock()
		return err
	}
	f.errs = nil
	gen := f.gen
	f.mu.Unlock()

	if err := onComplete(ctx, payload); err != nil {
		if fe, ok := domain.AsFieldErrors(err); ok {
			f.mu.Lock()
			f.errs = fe
			f.mu.Unlock()
		}
		return err
	}

	f.mu.Lock()
	if gen == f.gen {
		f.closed = true
	}
	f.mu.Unlock()
	return nil
}

// Cancel discards all edits, closes the form and calls onCancel when set.
func (f *Form) Cancel(onCancel func()) {
	f.mu.Lock()
	f.closed = true
	f.gen++
	f.values = domain.ClientInput{Status: domain.StatusActive}
	f.defaults = nil
	f.touched = false
	f.errs = nil
	f.setSelection(nil)
	f.mu.Unlock()

	if onCancel != nil {
		onCancel()
	}
}

// View snapshots the form. Selected ids missing from the directory are
// listed after the directory entries.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		Values:   f.payload(),
		Editing:  f.editing,
		ClientID: f.clientID,
		State:    f.state,
		Errors:   f.errs,
		Closed:   f.closed,
	}

	listed := make(map[string]struct{}, len(f.assets))
	v.Options = make([]Option, 0, len(f.assets)+len(f.selected))
	for _, a := range f.assets {
		listed[a.ID] = struct{}{}
		_, sel := f.index[a.ID]
		v.Options = append(v.Options, Option{ID: a.ID, Label: a.Name, Selected: sel, Known: true})
	}
	for _, id := range f.selected {
		if _, ok := listed[id]; !ok {
			v.Options = append(v.Options, Option{ID: id, Label: id, Selected: true})
		}
	}

	switch f.state {
	case Loading:
		v.EmptyLabel = LoadingLabel
	case Failed:
		v.EmptyLabel = UnavailableLabel
		v.LoadError = domain.Describe(f.loadErr)
	default:
		if len(f.assets) == 0 {
			v.EmptyLabel = UnavailableLabel
		}
	}
	return v
}

// setSelection must be called with mu held.
func (f *Form) setSelection(ids []string) {
	f.selected = ids
	f.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		f.index[id] = struct{}{}
	}
}
