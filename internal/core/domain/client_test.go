package domain

import (
	"errors"
	"fmt"
	"testing"

	json "github.com/goccy/go-json"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   Status
		legacy bool
		ok     bool
	}{
		{"ATIVO", StatusActive, false, true},
		{"INATIVO", StatusInactive, false, true},
		{"ativo", StatusActive, true, true},
		{"inativo", StatusInactive, true, true},
		{"Ativo", Status("Ativo"), false, false},
		{"", Status(""), false, false},
	}
	for _, tt := range tests {
		got, legacy, ok := ParseStatus(tt.raw)
		if got != tt.want || legacy != tt.legacy || ok != tt.ok {
			t.Errorf("ParseStatus(%q) = %q,%v,%v; want %q,%v,%v", tt.raw, got, legacy, ok, tt.want, tt.legacy, tt.ok)
		}
	}
}

func TestStatus_ValidIsCaseSensitive(t *testing.T) {
	if Status("ativo").Valid() {
		t.Fatal("lowercase status must not be valid")
	}
	if !StatusInactive.Valid() {
		t.Fatal("INATIVO must be valid")
	}
}

func TestClientPatch_Apply(t *testing.T) {
	c := Client{ID: "c1", Name: "Ana Silva Souza", Email: "ana@example.com", Status: StatusActive, AssetIDs: []string{"a1"}}

	name := "Ana Silva Pereira"
	ids := []string{"a2", "a2", "a3"}
	got := ClientPatch{Name: &name, AssetIDs: &ids}.Apply(c)

	if got.ID != "c1" || got.Name != name || got.Email != c.Email || got.Status != StatusActive {
		t.Fatalf("unexpected client after patch: %+v", got)
	}
	if len(got.AssetIDs) != 2 || got.AssetIDs[0] != "a2" || got.AssetIDs[1] != "a3" {
		t.Fatalf("unexpected asset ids: %v", got.AssetIDs)
	}
	if (ClientPatch{}).Empty() != true {
		t.Fatal("zero patch must be empty")
	}
}

func TestDescribe_Priority(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message", &BackendError{Op: "create", Status: 400, Message: "Email já cadastrado"}, "Email já cadastrado"},
		{"transport text", &BackendError{Op: "list", Err: errors.New("connection refused")}, "connection refused"},
		{"wrapped backend", fmt.Errorf("create client: %w", &BackendError{Op: "create", Status: 422, Message: "detalhe"}), "detalhe"},
		{"plain error", errors.New("boom"), "boom"},
		{"bare backend", &BackendError{Op: "list", Status: 500}, UnknownErrorMessage},
		{"nil", nil, UnknownErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Fatalf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackendError_IsUnavailable(t *testing.T) {
	if !errors.Is(&BackendError{Op: "list"}, ErrBackendUnavailable) {
		t.Fatal("transport failure must match ErrBackendUnavailable")
	}
	if !errors.Is(&BackendError{Op: "list", Status: 503}, ErrBackendUnavailable) {
		t.Fatal("5xx must match ErrBackendUnavailable")
	}
	if errors.Is(&BackendError{Op: "create", Status: 400}, ErrBackendUnavailable) {
		t.Fatal("4xx must not match ErrBackendUnavailable")
	}
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("nome", "Nome é obrigatório.")
	fe.Add("email", "Email inválido.")

	if fe.First("nome") != "Nome é obrigatório." || fe.First("status") != "" {
		t.Fatalf("unexpected First results: %v", fe)
	}
	want := "validation failed: email: Email inválido.; nome: Nome é obrigatório."
	if fe.Error() != want {
		t.Fatalf("Error() = %q, want %q", fe.Error(), want)
	}
}

func TestClient_UnmarshalNumericID(t *testing.T) {
	body := `[
		{"id":7,"nome":"Ana Carolina Dias","email":"ana@example.com","status":"ATIVO","ativosFinanceiros":[1,"a2"]},
		{"id":"c2","nome":"Bruno Henrique Alves","email":"bruno@example.com","status":"INATIVO","ativosFinanceiros":[]}
	]`

	var clients []Client
	if err := json.Unmarshal([]byte(body), &clients); err != nil {
		t.Fatalf("unmarshal returned error: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients[0].ID != "7" || clients[1].ID != "c2" {
		t.Fatalf("unexpected ids: %q, %q", clients[0].ID, clients[1].ID)
	}
	if len(clients[0].AssetIDs) != 2 || clients[0].AssetIDs[0] != "1" || clients[0].AssetIDs[1] != "a2" {
		t.Fatalf("unexpected asset ids: %v", clients[0].AssetIDs)
	}
}
