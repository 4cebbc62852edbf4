// Package seed loads the financial asset catalog used to populate the mongo
// directory.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/pkg/idx"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned for a catalog without assets.
var ErrEmptyCatalog = errors.New("seed: catalog has no assets")

type catalogFile struct {
	Assets []catalogEntry `yaml:"ativos"`
}

type catalogEntry struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"nome"`
	Value any    `yaml:"valorAtual"`
}

// AssetWriter stores catalog assets, inserting new ids and updating known ones.
type AssetWriter interface {
	UpsertMany(ctx context.Context, assets []domain.Asset) (inserted, modified int64, err error)
}

// Default returns the catalog shipped with the binary.
func Default() ([]domain.Asset, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// Load parses a YAML catalog. Entries without an id get a fresh ULID; ids must
// be unique and every entry needs a name and a non-negative value.
func Load(r io.Reader) ([]domain.Asset, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("seed: parse catalog: %w", err)
	}
	if len(file.Assets) == 0 {
		return nil, ErrEmptyCatalog
	}

	assets := make([]domain.Asset, 0, len(file.Assets))
	seen := make(map[string]struct{}, len(file.Assets))
	var errs []error
	for i, e := range file.Assets {
		a, err := e.toAsset()
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		if _, dup := seen[a.ID]; dup {
			errs = append(errs, fmt.Errorf("entry %d: duplicate id %q", i+1, a.ID))
			continue
		}
		seen[a.ID] = struct{}{}
		assets = append(assets, a)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("seed: invalid catalog: %w", err)
	}
	return assets, nil
}

func (e catalogEntry) toAsset() (domain.Asset, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return domain.Asset{}, errors.New("nome is required")
	}
	if e.Value == nil {
		return domain.Asset{}, errors.New("valorAtual is required")
	}
	value, err := decimal.NewFromString(fmt.Sprint(e.Value))
	if err != nil {
		return domain.Asset{}, fmt.Errorf("valorAtual: %w", err)
	}
	if value.IsNegative() {
		return domain.Asset{}, errors.New("valorAtual must not be negative")
	}

	id := strings.TrimSpace(e.ID)
	if id == "" {
		id = idx.New()
	}
	return domain.Asset{ID: id, Name: name, CurrentValue: value}, nil
}

// Run writes assets through w and logs the outcome.
func Run(ctx context.Context, w AssetWriter, assets []domain.Asset, log zerolog.Logger) error {
	inserted, modified, err := w.UpsertMany(ctx, assets)
	if err != nil {
		return fmt.Errorf("seed: write assets: %w", err)
	}
	log.Info().
		Int("assets", len(assets)).
		Int64("inserted", inserted).
		Int64("modified", modified).
		Msg("asset catalog seeded")
	return nil
}
