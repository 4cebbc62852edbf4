package domain

import (
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Asset is a financial instrument owned by an external system. Read-only here.
type Asset struct {
	ID           string          `json:"id"`
	Name         string          `json:"nome"`
	CurrentValue decimal.Decimal `json:"valorAtual"`
}

// UnmarshalJSON accepts numeric or string ids and normalizes them to strings.
func (a *Asset) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID           json.RawMessage `json:"id"`
		Name         string          `json:"nome"`
		CurrentValue decimal.Decimal `json:"valorAtual"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	id, _ := identifierFromJSON(wire.ID)
	*a = Asset{ID: id, Name: wire.Name, CurrentValue: wire.CurrentValue}
	return nil
}
