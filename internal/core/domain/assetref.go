package domain

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// RefKind discriminates the AssetRef union.
type RefKind uint8

const (
	// RefNone carries no usable identifier (null, or an unsupported shape).
	RefNone RefKind = iota
	// RefString is a bare identifier.
	RefString
	// RefObject is an embedded asset object; ID holds its "id" field.
	RefObject
)

// AssetRef is a reference to an asset as it arrives in client defaults:
// either a bare identifier or a whole asset object.
type AssetRef struct {
	Kind RefKind
	ID   string
	// Rest holds the remaining fields of an object reference.
	Rest map[string]json.RawMessage
}

// StringRef builds a bare-identifier reference.
func StringRef(id string) AssetRef {
	return AssetRef{Kind: RefString, ID: id}
}

// ObjectRef builds an embedded-object reference.
func ObjectRef(id string, rest map[string]json.RawMessage) AssetRef {
	return AssetRef{Kind: RefObject, ID: id, Rest: rest}
}

// RefFromAsset wraps a directory asset as an object reference.
func RefFromAsset(a Asset) AssetRef {
	name, _ := json.Marshal(a.Name)
	value, _ := json.Marshal(a.CurrentValue)
	return ObjectRef(a.ID, map[string]json.RawMessage{
		"nome":       name,
		"valorAtual": value,
	})
}

// StringRefs wraps plain ids.
func StringRefs(ids []string) []AssetRef {
	refs := make([]AssetRef, len(ids))
	for i, id := range ids {
		refs[i] = StringRef(id)
	}
	return refs
}

// Canonical returns the string identifier of the reference, if any.
func (r AssetRef) Canonical() (string, bool) {
	switch r.Kind {
	case RefString, RefObject:
		id := strings.TrimSpace(r.ID)
		return id, id != ""
	default:
		return "", false
	}
}

// UnmarshalJSON picks the union member from the first JSON token.
func (r *AssetRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*r = AssetRef{}
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = StringRef(s)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return err
		}
		raw, found := fields["id"]
		delete(fields, "id")
		id, ok := identifierFromJSON(raw)
		if !found || !ok {
			*r = AssetRef{Kind: RefNone, Rest: fields}
			return nil
		}
		*r = ObjectRef(id, fields)
	default:
		if id, ok := identifierFromJSON(b); ok {
			*r = StringRef(id)
			return nil
		}
		*r = AssetRef{}
	}
	return nil
}

// MarshalJSON writes the reference back in its original shape.
func (r AssetRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RefString:
		return json.Marshal(r.ID)
	case RefObject:
		out := make(map[string]json.RawMessage, len(r.Rest)+1)
		for k, v := range r.Rest {
			out[k] = v
		}
		id, err := json.Marshal(r.ID)
		if err != nil {
			return nil, err
		}
		out["id"] = id
		return json.Marshal(out)
	default:
		return []byte("null"), nil
	}
}

// NormalizeRefs resolves references to canonical string ids, dropping those
// without an identifier and keeping the first occurrence of duplicates.
func NormalizeRefs(refs []AssetRef) []string {
	out := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		id, ok := ref.Canonical()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// NormalizeIDs is NormalizeRefs over plain ids.
func NormalizeIDs(ids []string) []string {
	return NormalizeRefs(StringRefs(ids))
}

// identifierFromJSON accepts a JSON string or number and returns its canonical
// text. Numbers are printed in plain decimal form without trailing zeros.
func identifierFromJSON(raw []byte) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch {
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		// 42, 42.0 and 4.2e1 name the same id.
		d, err := decimal.NewFromString(string(raw))
		if err != nil {
			return "", false
		}
		return d.String(), true
	default:
		return "", false
	}
}
