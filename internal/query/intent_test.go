package query

import (
	"testing"

	"github.com/codecompass-mcp/codecompass/internal/coretypes"
)

// Ported from codecompass-query/src/intent.rs's own unit tests.
func TestClassifyIntentSymbol(t *testing.T) {
	cases := []string{"validate_token", "AuthHandler", "auth::jwt::validate"}
	for _, q := range cases {
		if got := ClassifyIntent(q); got != coretypes.IntentSymbol {
			t.Errorf("ClassifyIntent(%q) = %v, want Symbol", q, got)
		}
	}
}

func TestClassifyIntentPath(t *testing.T) {
	cases := []string{"src/auth/handler.rs", "handler.rs"}
	for _, q := range cases {
		if got := ClassifyIntent(q); got != coretypes.IntentPath {
			t.Errorf("ClassifyIntent(%q) = %v, want Path", q, got)
		}
	}
}

func TestClassifyIntentError(t *testing.T) {
	cases := []string{`"connection refused"`, "error: cannot find module"}
	for _, q := range cases {
		if got := ClassifyIntent(q); got != coretypes.IntentError {
			t.Errorf("ClassifyIntent(%q) = %v, want Error", q, got)
		}
	}
}

func TestClassifyIntentNaturalLanguage(t *testing.T) {
	cases := []string{"where is rate limiting implemented", "how does authentication work"}
	for _, q := range cases {
		if got := ClassifyIntent(q); got != coretypes.IntentNaturalLanguage {
			t.Errorf("ClassifyIntent(%q) = %v, want NaturalLanguage", q, got)
		}
	}
}
