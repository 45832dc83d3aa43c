package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/example/scripthub/internal/config"
)

const (
	bridgeTokenSalt = "scripthub-bridge"
	bridgeTokenInfo = "scripthub bridge token v1"
	bridgeTokenSize = 32
)

// ResolveBridgeToken returns the bearer token the frontend must present to the
// command bridge. Precedence: compiled secret, SCRIPTHUB_BRIDGE_TOKEN,
// SCRIPTHUB_SECRET, then a random per-launch token.
func ResolveBridgeToken() string {
	if compiled := strings.TrimSpace(config.CompiledSecret); compiled != "" {
		return DeriveBridgeToken(compiled)
	}

	if token := strings.TrimSpace(os.Getenv("SCRIPTHUB_BRIDGE_TOKEN")); token != "" {
		return token
	}

	if secret := strings.TrimSpace(os.Getenv("SCRIPTHUB_SECRET")); secret != "" {
		return DeriveBridgeToken(secret)
	}

	return RandomToken()
}

// DeriveBridgeToken expands the provided secret into a deterministic token.
func DeriveBridgeToken(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	reader := hkdf.New(sha256.New, []byte(secret), []byte(bridgeTokenSalt), []byte(bridgeTokenInfo))
	key := make([]byte, bridgeTokenSize)
	if _, err := io.ReadFull(reader, key); err != nil {
		// hkdf only fails past 255*HashLen bytes.
		panic(fmt.Sprintf("derive bridge token: %v", err))
	}
	return hex.EncodeToString(key)
}

// RandomToken returns an unguessable token for a single launch.
func RandomToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// Equal compares a presented token against the expected one in constant time.
func Equal(presented, expected string) bool {
	if presented == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// WriteTokenFile stores token at path with owner-only permissions so the
// frontend host can pick it up.
func WriteTokenFile(path, token string) error {
	if token == "" {
		return errors.New("missing bridge token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure token directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("install token file: %w", err)
	}
	return nil
}
