package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/scripthub/internal/logging"
)

const (
	DefaultUserURL   = "https://api.github.com/user"
	DefaultUserAgent = "ScriptHub-App"

	defaultTimeout = 15 * time.Second
	acceptHeader   = "application/vnd.github+json"
)

// NetworkError reports that the verification request never produced an HTTP
// response (DNS, connect, TLS, timeout). A non-2xx status is not a NetworkError.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("verify token against %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Verifier checks bearer tokens against the GitHub user endpoint.
type Verifier struct {
	Client    *http.Client
	URL       string
	UserAgent string
}

// NewVerifier builds a Verifier; empty arguments select the GitHub defaults.
func NewVerifier(httpClient *http.Client, endpoint, userAgent string, timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultUserURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Verifier{Client: httpClient, URL: endpoint, UserAgent: userAgent}
}

// Verify issues one GET with the token as bearer credential and reports
// whether the service answered with a 2xx status. It never retries.
func (v *Verifier) Verify(ctx context.Context, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", v.UserAgent)
	req.Header.Set("Accept", acceptHeader)
	logging.LogHTTPRequest(req, nil)

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, &NetworkError{URL: v.URL, Err: err}
	}
	defer resp.Body.Close()

	if logging.DebugEnabled() {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logging.LogHTTPResponse(resp, snippet)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	logging.Debugf("token %s verification status %d", logging.MaskIdentifier(token), resp.StatusCode)
	return ok, nil
}
