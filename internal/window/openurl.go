package window

import (
	"fmt"
	"net/url"

	"github.com/example/scripthub/internal/logging"
)

// openURL hands the frontend URL to the desktop's default handler. Only web
// URLs and the webview scheme are passed on.
func openURL(raw string) {
	if err := validateFrontendURL(raw); err != nil {
		logging.Warnf("not opening frontend: %v", err)
		return
	}
	cmd := launcher(raw)
	if err := cmd.Start(); err != nil {
		logging.Warnf("open %s with %s: %v", raw, cmd.Path, err)
		return
	}
	// Reap the opener; it exits as soon as the handler has the URL.
	go func() { _ = cmd.Wait() }()
}

func validateFrontendURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "tauri":
		return nil
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}
