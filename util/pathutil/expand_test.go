package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpand(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde only", "~", home},
		{"tilde prefix", "~/backups", filepath.Join(home, "backups")},
		{"absolute path untouched", "/var/tmp/vault", "/var/tmp/vault"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Expand(tt.input)
			if err != nil {
				t.Fatalf("Expand(%q) returned error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("VAULT_TEST_DIR", "/srv/sessions")
	result, err := Expand("$VAULT_TEST_DIR/store")
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if result != "/srv/sessions/store" {
		t.Errorf("Expand env = %q, want %q", result, "/srv/sessions/store")
	}
}
