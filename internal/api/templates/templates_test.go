package templates

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	for _, page := range []string{"home.html", "clients.html", "client_form.html", "client_detail.html", "assets.html", "login.html", "error.html"} {
		if _, ok := r.pages[page]; !ok {
			t.Fatalf("page %s not registered", page)
		}
	}
	if _, ok := r.pages[layoutFile]; ok {
		t.Fatalf("layout must not be a page")
	}
}

func TestRender_ErrorPage(t *testing.T) {
	r := MustNew()
	var buf bytes.Buffer
	data := map[string]any{"Title": "Não encontrado", "Error": "Cliente não encontrado.", "User": "", "Notice": ""}

	if err := r.Render(&buf, "error.html", data, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Cliente não encontrado.") || !strings.Contains(out, "<title>Não encontrado · Anka Tech Investimentos</title>") {
		t.Fatalf("unexpected page:\n%s", out)
	}
}

func TestRender_UnknownPage(t *testing.T) {
	if err := MustNew().Render(&bytes.Buffer{}, "missing.html", nil, nil); err == nil {
		t.Fatalf("expected error for unknown page")
	}
}
