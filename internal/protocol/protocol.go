package protocol

import "encoding/json"

// Commands the frontend may invoke over the bridge.
const (
	CommandCredentialFromStore = "get-credential-from-store"
	CommandCredentialFromEnv   = "get-credential-from-env"
	CommandVerifyToken         = "verify-token"
	CommandHideWindow          = "hide-main-window"
	CommandShowWindow          = "show-main-window"
	CommandQuit                = "quit-application"
	CommandAutostartEnable     = "autostart-enable"
	CommandAutostartDisable    = "autostart-disable"
	CommandAutostartIsEnabled  = "autostart-is-enabled"
)

// VerifyTokenArgs is the argument object of CommandVerifyToken.
type VerifyTokenArgs struct {
	Token *string `json:"token"`
}

// Response is the envelope returned for every invocation. A nil Value with no
// Error means the command produced nothing (an absent credential, or a command
// without output).
type Response struct {
	Value json.RawMessage `json:"value"`
	Error string          `json:"error,omitempty"`
}

// Health is returned by the unauthenticated health endpoint.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
