package backend

import (
	json "github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"
)

// messageExpr picks the user-facing text out of an error body.
var messageExpr = jmespath.MustCompile("mensagem || detalhes")

// errorMessage extracts "mensagem", falling back to "detalhes". Non-string
// values are rendered as JSON. It returns "" when the body has neither.
func errorMessage(body []byte) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	v, err := messageExpr.Search(payload)
	if err != nil || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
