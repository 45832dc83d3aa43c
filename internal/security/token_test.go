package security

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/example/scripthub/internal/config"
)

func TestResolveBridgeTokenPrecedence(t *testing.T) {
	previous := config.CompiledSecret
	defer func() { config.CompiledSecret = previous }()

	t.Setenv("SCRIPTHUB_BRIDGE_TOKEN", "explicit-token")
	t.Setenv("SCRIPTHUB_SECRET", "shared-secret")

	config.CompiledSecret = "compiled"
	if got, want := ResolveBridgeToken(), DeriveBridgeToken("compiled"); got != want {
		t.Fatalf("compiled secret should win: got %q want %q", got, want)
	}

	config.CompiledSecret = ""
	if got := ResolveBridgeToken(); got != "explicit-token" {
		t.Fatalf("expected explicit token, got %q", got)
	}

	t.Setenv("SCRIPTHUB_BRIDGE_TOKEN", "")
	if got, want := ResolveBridgeToken(), DeriveBridgeToken("shared-secret"); got != want {
		t.Fatalf("expected derived token, got %q want %q", got, want)
	}

	t.Setenv("SCRIPTHUB_SECRET", "")
	first, second := ResolveBridgeToken(), ResolveBridgeToken()
	if first == "" || first == second {
		t.Fatalf("expected distinct random tokens, got %q and %q", first, second)
	}
}

func TestDeriveBridgeTokenDeterministic(t *testing.T) {
	a := DeriveBridgeToken("secret")
	b := DeriveBridgeToken("  secret  ")
	if a != b {
		t.Fatalf("derivation should ignore surrounding whitespace")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if DeriveBridgeToken("other") == a {
		t.Fatalf("different secrets must derive different tokens")
	}
	if DeriveBridgeToken("") != "" {
		t.Fatalf("empty secret must derive empty token")
	}
}

func TestEqual(t *testing.T) {
	if !Equal("abc", "abc") {
		t.Fatalf("identical tokens should match")
	}
	if Equal("abc", "abd") || Equal("", "") || Equal("abc", "") {
		t.Fatalf("mismatched or empty tokens must not match")
	}
}

func TestWriteTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bridge-token")
	if err := WriteTokenFile(path, "tok"); err != nil {
		t.Fatalf("WriteTokenFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "tok" {
		t.Fatalf("unexpected contents %q", data)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("expected 0600 permissions, got %o", info.Mode().Perm())
		}
	}
	if err := WriteTokenFile(path, ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
