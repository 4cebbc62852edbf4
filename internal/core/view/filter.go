// Package view holds the presentation logic shared by the HTML pages, the
// JSON API and the CLI: list filtering, empty states and the detail join.
package view

import (
	"strings"

	"github.com/ankatech/investor-admin/internal/core/domain"
)

// Empty-state messages.
const (
	NoClientsStored  = "Nenhum cliente cadastrado."
	NoClientsMatched = "Nenhum cliente encontrado."
	NoAssetsStored   = "Nenhum ativo cadastrado."
	NoAssetsMatched  = "Nenhum ativo encontrado."
	NoAllocations    = "Nenhuma alocação de ativo encontrada para este cliente."
)

// FilterClients keeps clients whose name or email contains term, ignoring case.
// An empty term keeps everything.
func FilterClients(clients []domain.Client, term string) []domain.Client {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) {
			out = append(out, c)
		}
	}
	return out
}

// FilterAssets keeps assets whose name contains term, ignoring case.
func FilterAssets(assets []domain.Asset, term string) []domain.Asset {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		if needle == "" || strings.Contains(strings.ToLower(a.Name), needle) {
			out = append(out, a)
		}
	}
	return out
}

// ClientsEmptyState returns the message for an empty client listing, or "".
func ClientsEmptyState(matched int, term string) string {
	return emptyState(matched, term, NoClientsStored, NoClientsMatched)
}

// AssetsEmptyState returns the message for an empty asset listing, or "".
func AssetsEmptyState(matched int, term string) string {
	return emptyState(matched, term, NoAssetsStored, NoAssetsMatched)
}

func emptyState(matched int, term, stored, noMatch string) string {
	if matched > 0 {
		return ""
	}
	if strings.TrimSpace(term) != "" {
		return noMatch
	}
	return stored
}
