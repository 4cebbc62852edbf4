package view

import (
	"github.com/shopspring/decimal"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/pkg/money"
)

// Allocations joins the client's asset ids against the directory, in directory
// order. Ids missing from the directory are dropped.
func Allocations(client domain.Client, directory []domain.Asset) []domain.Asset {
	held := make(map[string]struct{}, len(client.AssetIDs))
	for _, id := range client.AssetIDs {
		held[id] = struct{}{}
	}

	out := make([]domain.Asset, 0, len(client.AssetIDs))
	for _, a := range directory {
		if _, ok := held[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Detail builds the read-only detail view of a client.
func Detail(client domain.Client, directory []domain.Asset) *ports.ClientDetail {
	assets := Allocations(client, directory)

	rows := make([]ports.Allocation, len(assets))
	values := make([]decimal.Decimal, len(assets))
	for i, a := range assets {
		rows[i] = ports.Allocation{Asset: a, Value: money.BRL(a.CurrentValue)}
		values[i] = a.CurrentValue
	}

	return &ports.ClientDetail{
		Client:      client,
		Allocations: rows,
		Total:       money.BRL(money.Sum(values...)),
	}
}
