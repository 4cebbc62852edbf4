package domain

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Status is the lifecycle flag of a client. Canonical tokens are uppercase.
type Status string

const (
	StatusActive   Status = "ATIVO"
	StatusInactive Status = "INATIVO"
)

// legacyStatuses maps the lowercase tokens emitted by older backend revisions
// onto the canonical ones. Only read paths consult it.
var legacyStatuses = map[string]Status{
	"ativo":   StatusActive,
	"inativo": StatusInactive,
}

// Valid reports whether s is one of the canonical tokens (case-sensitive).
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Label is the human-facing badge text.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Ativo"
	case StatusInactive:
		return "Inativo"
	default:
		return string(s)
	}
}

// ParseStatus resolves a status read from storage or the backend. The legacy
// flag is set when the value was accepted through the lowercase alias table.
func ParseStatus(raw string) (s Status, legacy bool, ok bool) {
	if st := Status(raw); st.Valid() {
		return st, false, true
	}
	if st, found := legacyStatuses[strings.TrimSpace(raw)]; found {
		return st, true, true
	}
	return Status(raw), false, false
}

// Client is the read model of an investment client.
type Client struct {
	ID       string   `json:"id"`
	Name     string   `json:"nome"`
	Email    string   `json:"email"`
	Status   Status   `json:"status"`
	AssetIDs []string `json:"ativosFinanceiros"`
}

// UnmarshalJSON tolerates the heterogeneous shapes the backend has produced:
// numeric ids, asset references as bare ids or embedded objects, and
// lowercase statuses.
func (c *Client) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID       json.RawMessage `json:"id"`
		Name     string          `json:"nome"`
		Email    string          `json:"email"`
		Status   string          `json:"status"`
		AssetIDs []AssetRef      `json:"ativosFinanceiros"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	status, _, _ := ParseStatus(wire.Status)
	id, _ := identifierFromJSON(wire.ID)
	*c = Client{
		ID:       id,
		Name:     wire.Name,
		Email:    wire.Email,
		Status:   status,
		AssetIDs: NormalizeRefs(wire.AssetIDs),
	}
	return nil
}

// HasAsset reports whether the client references the given asset id.
func (c Client) HasAsset(id string) bool {
	for _, a := range c.AssetIDs {
		if a == id {
			return true
		}
	}
	return false
}

// ClientInput is the mutable projection of a Client used for create and as the
// canonical form payload. It never carries an id.
type ClientInput struct {
	Name     string   `json:"nome"`
	Email    string   `json:"email"`
	Status   Status   `json:"status"`
	AssetIDs []string `json:"ativosFinanceiros"`
}

// Patch converts a full input into a patch that sets every field.
func (in ClientInput) Patch() ClientPatch {
	status := in.Status
	ids := append([]string{}, in.AssetIDs...)
	return ClientPatch{
		Name:     &in.Name,
		Email:    &in.Email,
		Status:   &status,
		AssetIDs: &ids,
	}
}

// ClientPatch is a partial update; nil fields are left untouched.
type ClientPatch struct {
	Name     *string
	Email    *string
	Status   *Status
	AssetIDs *[]string
}

// Empty reports whether the patch changes nothing.
func (p ClientPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Status == nil && p.AssetIDs == nil
}

// Apply returns a copy of c with the patch applied.
func (p ClientPatch) Apply(c Client) Client {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.AssetIDs != nil {
		c.AssetIDs = NormalizeIDs(*p.AssetIDs)
	}
	return c
}
