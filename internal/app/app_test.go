package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/scripthub/internal/bridge"
	"github.com/example/scripthub/internal/config"
	"github.com/example/scripthub/internal/credential"
	"github.com/example/scripthub/internal/protocol"
	"github.com/example/scripthub/internal/tray"
	"github.com/example/scripthub/internal/window"
)

type fakeAutostart struct {
	enabled bool
	err     error
}

func (f *fakeAutostart) Enable() error {
	if f.err != nil {
		return f.err
	}
	f.enabled = true
	return nil
}

func (f *fakeAutostart) Disable() error {
	if f.err != nil {
		return f.err
	}
	f.enabled = false
	return nil
}

func (f *fakeAutostart) IsEnabled() (bool, error) { return f.enabled, f.err }

type fakeTray struct{ err error }

func (f fakeTray) Run(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func testConfig(verifyURL string) *config.Config {
	return &config.Config{
		ServiceHost:      "github.com",
		HelperCommand:    "scripthub-test-missing-helper",
		PrimaryTokenEnv:  "SCRIPTHUB_TEST_PRIMARY",
		FallbackTokenEnv: "SCRIPTHUB_TEST_FALLBACK",
		VerifyURL:        verifyURL,
		UserAgent:        "ScriptHub-App",
		VerifyTimeout:    time.Second,
		BridgeAddr:       "127.0.0.1:0",
		AllowedOrigins:   []string{"http://localhost:1420"},
		AppID:            "com.scripthub.test",
	}
}

func newTestApp(t *testing.T, verifyURL string) *App {
	t.Helper()
	if verifyURL == "" {
		verifyURL = "http://127.0.0.1:1/user"
	}
	a, err := New(testConfig(verifyURL), Options{Minimized: true, Version: "test"})
	require.NoError(t, err)
	a.autostart = &fakeAutostart{}
	a.tray = fakeTray{err: tray.ErrUnavailable}
	return a
}

// captureExit swaps the process exit for a recorder and returns a snapshot func.
func captureExit(t *testing.T) func() []int {
	t.Helper()
	var mu sync.Mutex
	var codes []int
	prev := exit
	exit = func(code int) {
		mu.Lock()
		codes = append(codes, code)
		mu.Unlock()
	}
	t.Cleanup(func() { exit = prev })
	return func() []int {
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), codes...)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("https://api.github.com/user")
	cfg.ServiceHost = ""
	_, err := New(cfg, Options{})
	require.Error(t, err)

	_, err = New(nil, Options{})
	require.Error(t, err)
}

func TestNewStartsHiddenWhenMinimized(t *testing.T) {
	a := newTestApp(t, "")
	assert.False(t, a.Window().State().Visible)
}

func TestInvokeCredentialFromEnv(t *testing.T) {
	a := newTestApp(t, "")

	t.Setenv("SCRIPTHUB_TEST_PRIMARY", "")
	t.Setenv("SCRIPTHUB_TEST_FALLBACK", "")
	got, err := a.Invoke(context.Background(), protocol.CommandCredentialFromEnv, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	t.Setenv("SCRIPTHUB_TEST_FALLBACK", "fallback")
	got, err = a.Invoke(context.Background(), protocol.CommandCredentialFromEnv, nil)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	t.Setenv("SCRIPTHUB_TEST_PRIMARY", "primary")
	got, err = a.Invoke(context.Background(), protocol.CommandCredentialFromEnv, nil)
	require.NoError(t, err)
	assert.Equal(t, "primary", got)
}

func TestInvokeCredentialFromStoreSpawnFailure(t *testing.T) {
	a := newTestApp(t, "")

	got, err := a.Invoke(context.Background(), protocol.CommandCredentialFromStore, nil)
	require.Error(t, err)
	assert.Nil(t, got)

	var execErr *credential.ExecError
	assert.True(t, errors.As(err, &execErr))
}

func TestResolveCredentialFallsBackToEnv(t *testing.T) {
	a := newTestApp(t, "")
	t.Setenv("SCRIPTHUB_TEST_PRIMARY", "from-env")

	res, ok, err := a.ResolveCredential(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "from-env", res.Token)
	assert.Equal(t, "environment", res.Source)
}

func TestInvokeVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer good" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	a := newTestApp(t, srv.URL+"/user")

	got, err := a.Invoke(context.Background(), protocol.CommandVerifyToken, json.RawMessage(`{"token":"good"}`))
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = a.Invoke(context.Background(), protocol.CommandVerifyToken, json.RawMessage(`{"token":"bad"}`))
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestInvokeVerifyTokenBadArgs(t *testing.T) {
	a := newTestApp(t, "")

	for _, args := range []string{"", `{}`, `{"token":1}`} {
		_, err := a.Invoke(context.Background(), protocol.CommandVerifyToken, json.RawMessage(args))
		assert.ErrorIs(t, err, bridge.ErrInvalidArgs, "args %q", args)
	}
}

func TestInvokeWindowCommands(t *testing.T) {
	a := newTestApp(t, "")
	events, cancel := a.Window().Subscribe(8)
	defer cancel()

	_, err := a.Invoke(context.Background(), protocol.CommandShowWindow, nil)
	require.NoError(t, err)
	assert.Equal(t, window.State{Visible: true, Focused: true}, a.Window().State())
	for _, want := range []window.Action{window.ActionShow, window.ActionUnminimize, window.ActionFocus} {
		assert.Equal(t, want, (<-events).Action)
	}

	_, err = a.Invoke(context.Background(), protocol.CommandHideWindow, nil)
	require.NoError(t, err)
	assert.False(t, a.Window().State().Visible)
}

func TestInvokeAutostart(t *testing.T) {
	a := newTestApp(t, "")
	ctx := context.Background()

	_, err := a.Invoke(ctx, protocol.CommandAutostartEnable, nil)
	require.NoError(t, err)
	got, err := a.Invoke(ctx, protocol.CommandAutostartIsEnabled, nil)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = a.Invoke(ctx, protocol.CommandAutostartDisable, nil)
	require.NoError(t, err)
	got, err = a.Invoke(ctx, protocol.CommandAutostartIsEnabled, nil)
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestInvokeUnknownCommand(t *testing.T) {
	a := newTestApp(t, "")
	_, err := a.Invoke(context.Background(), "format-disk", nil)
	assert.ErrorIs(t, err, bridge.ErrUnknownCommand)
}

func TestQuitExitsWithZero(t *testing.T) {
	codes := captureExit(t)
	a := newTestApp(t, "")

	a.Quit()

	assert.Equal(t, []int{0}, codes())
}

func TestQuitCommandExitsAfterReply(t *testing.T) {
	codes := captureExit(t)
	a := newTestApp(t, "")

	got, err := a.Invoke(context.Background(), protocol.CommandQuit, nil)
	require.NoError(t, err)
	after, ok := got.(bridge.AfterReply)
	require.True(t, ok)
	assert.Empty(t, codes(), "exit must wait for the reply")

	after()
	assert.Equal(t, []int{0}, codes())
}

func TestServeOverBridge(t *testing.T) {
	codes := captureExit(t)
	t.Setenv("SCRIPTHUB_BRIDGE_TOKEN", "test-bridge-token")
	tokenFile := filepath.Join(t.TempDir(), "bridge.token")

	a := newTestApp(t, "")
	a.cfg.BridgeTokenFile = tokenFile

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	written, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "test-bridge-token", string(written))

	req, err := http.NewRequest(http.MethodPost, base+"/invoke/"+protocol.CommandQuit, strings.NewReader(""))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer test-bridge-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var out protocol.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", string(out.Value))
	require.Eventually(t, func() bool { return len(codes()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{0}, codes())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeStopsWhenTrayFails(t *testing.T) {
	t.Setenv("SCRIPTHUB_BRIDGE_TOKEN", "test-bridge-token")
	a := newTestApp(t, "")
	boom := errors.New("tray crashed")
	a.tray = fakeTray{err: boom}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = a.Serve(context.Background(), ln)
	assert.ErrorIs(t, err, boom)
}

func TestRunRefusesSecondInstance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","version":"test"}`))
	}))
	defer srv.Close()

	a := newTestApp(t, "")
	a.cfg.BridgeAddr = strings.TrimPrefix(srv.URL, "http://")

	err := a.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
