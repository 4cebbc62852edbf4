package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", t.TempDir() + "/missing.env"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func backendStub(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clientes":
			_, _ = w.Write([]byte(`{"dados":[
				{"id":"c1","nome":"Ana Beatriz Lima","email":"ana@example.com","status":"ATIVO","ativosFinanceiros":["1"]},
				{"id":"c2","nome":"Carlos Eduardo Souza","email":"carlos@example.com","status":"INATIVO","ativosFinanceiros":[]}
			]}`))
		case "/ativos-financeiros":
			_, _ = w.Write([]byte(`{"dados":[{"id":1,"nome":"Tesouro Selic 2029","valorAtual":1234.5}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("DIRECTORY_BACKEND", "http")
	t.Setenv("BACKEND_URL", srv.URL)
	t.Setenv("BACKEND_RPS", "0")
	t.Setenv("LOG_LEVEL", "error")
}

func TestClientsCommand_Table(t *testing.T) {
	backendStub(t)
	asJSON = false

	out := execute(t, "clients", "--q", "carlos")
	assert.Contains(t, out, "Carlos Eduardo Souza")
	assert.Contains(t, out, "Inativo")
	assert.NotContains(t, out, "Ana Beatriz Lima")
}

func TestClientsCommand_EmptyState(t *testing.T) {
	backendStub(t)
	asJSON = false

	out := execute(t, "clients", "--q", "zzz")
	assert.Equal(t, "Nenhum cliente encontrado.", strings.TrimSpace(out))
}

func TestAssetsCommand_JSON(t *testing.T) {
	backendStub(t)

	out := execute(t, "assets", "--q", "", "--json")
	asJSON = false
	assert.Contains(t, out, `"nome": "Tesouro Selic 2029"`)
	assert.Contains(t, out, `"id": "1"`)
}

func TestHashPassword(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	out := strings.TrimSpace(execute(t, "operator", "hash-password", "s3cret-pass"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(out), []byte("s3cret-pass")))
}
