// Package app wires the host together: one App value owns the configuration,
// the main window handle, the credential sources, the verifier and the
// autostart entry, and serves them to the tray and the command bridge.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/example/scripthub/internal/autostart"
	"github.com/example/scripthub/internal/bridge"
	"github.com/example/scripthub/internal/config"
	"github.com/example/scripthub/internal/credential"
	"github.com/example/scripthub/internal/github"
	"github.com/example/scripthub/internal/ipc"
	"github.com/example/scripthub/internal/logging"
	"github.com/example/scripthub/internal/protocol"
	"github.com/example/scripthub/internal/security"
	"github.com/example/scripthub/internal/tray"
	"github.com/example/scripthub/internal/window"
)

const Name = "ScriptHub"

// exit terminates the process; tests replace it.
var exit = os.Exit

// ErrAlreadyRunning is returned by Run when another host answers on the
// bridge address.
var ErrAlreadyRunning = errors.New("scripthub is already running")

// Autostarter manages the launch-at-login entry.
type Autostarter interface {
	Enable() error
	Disable() error
	IsEnabled() (bool, error)
}

type trayRunner interface {
	Run(ctx context.Context) error
}

// Options carries launch settings that do not belong in the config file.
type Options struct {
	// Minimized starts with the main window hidden.
	Minimized bool
	Version   string
}

// App is the long-lived host context.
type App struct {
	cfg     *config.Config
	version string

	window    *window.Remote
	store     *credential.Store
	env       *credential.Env
	verifier  *github.Verifier
	autostart Autostarter
	tray      trayRunner
}

// New builds the host from a validated configuration.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		cfg:      cfg,
		version:  opts.Version,
		window:   window.NewRemote(cfg.FrontendURL, opts.Minimized),
		store:    credential.NewStore(cfg.HelperCommand, cfg.ServiceHost),
		env:      credential.NewEnv(cfg.PrimaryTokenEnv, cfg.FallbackTokenEnv),
		verifier: github.NewVerifier(nil, cfg.VerifyURL, cfg.UserAgent, cfg.VerifyTimeout),
	}

	mgr, err := autostart.New(cfg.AppID, Name)
	if err != nil {
		logging.Warnf("autostart unavailable: %v", err)
	} else {
		a.autostart = mgr
	}
	a.tray = tray.New(a)
	return a, nil
}

// Window returns the main window handle.
func (a *App) Window() *window.Remote {
	return a.window
}

// CredentialFromStore asks the git credential helper for the service token.
func (a *App) CredentialFromStore(ctx context.Context) (string, bool, error) {
	return a.store.Lookup(ctx)
}

// CredentialFromEnv reads the token from the configured variables.
func (a *App) CredentialFromEnv() (string, bool) {
	return a.env.Resolve()
}

// ResolveCredential tries the store, then the environment.
func (a *App) ResolveCredential(ctx context.Context) (credential.Resolution, bool, error) {
	return credential.Chain{a.store, a.env}.Resolve(ctx)
}

// VerifyToken reports whether the service accepts token.
func (a *App) VerifyToken(ctx context.Context, token string) (bool, error) {
	return a.verifier.Verify(ctx, token)
}

func (a *App) HideMainWindow() {
	a.window.Hide()
}

// ShowMainWindow shows, unminimizes and focuses the main window.
func (a *App) ShowMainWindow() {
	window.Reveal(a.window)
}

// Quit ends the process with status 0. Nothing is drained first.
func (a *App) Quit() {
	logging.Infof("quit requested")
	logging.Sync()
	exit(0)
}

func (a *App) EnableAutostart() error {
	if a.autostart == nil {
		return errors.New("autostart is unavailable")
	}
	return a.autostart.Enable()
}

func (a *App) DisableAutostart() error {
	if a.autostart == nil {
		return errors.New("autostart is unavailable")
	}
	return a.autostart.Disable()
}

func (a *App) AutostartEnabled() (bool, error) {
	if a.autostart == nil {
		return false, errors.New("autostart is unavailable")
	}
	return a.autostart.IsEnabled()
}

// Invoke runs a frontend command by name.
func (a *App) Invoke(ctx context.Context, command string, args json.RawMessage) (any, error) {
	switch command {
	case protocol.CommandCredentialFromStore:
		token, ok, err := a.CredentialFromStore(ctx)
		if err != nil {
			return nil, err
		}
		return optional(token, ok), nil
	case protocol.CommandCredentialFromEnv:
		return optional(a.CredentialFromEnv()), nil
	case protocol.CommandVerifyToken:
		var in protocol.VerifyTokenArgs
		if len(args) > 0 {
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", bridge.ErrInvalidArgs, err)
			}
		}
		if in.Token == nil {
			return nil, fmt.Errorf("%w: missing token", bridge.ErrInvalidArgs)
		}
		return a.VerifyToken(ctx, *in.Token)
	case protocol.CommandHideWindow:
		a.HideMainWindow()
		return nil, nil
	case protocol.CommandShowWindow:
		a.ShowMainWindow()
		return nil, nil
	case protocol.CommandQuit:
		return bridge.AfterReply(a.Quit), nil
	case protocol.CommandAutostartEnable:
		return nil, a.EnableAutostart()
	case protocol.CommandAutostartDisable:
		return nil, a.DisableAutostart()
	case protocol.CommandAutostartIsEnabled:
		return a.AutostartEnabled()
	default:
		return nil, fmt.Errorf("%w: %s", bridge.ErrUnknownCommand, command)
	}
}

func optional(token string, ok bool) any {
	if !ok || token == "" {
		return nil
	}
	return token
}

// Run listens on the configured bridge address and serves until ctx ends.
func (a *App) Run(ctx context.Context) error {
	endpoint := ipc.NewEndpoint(a.cfg.BridgeAddr)
	if h, err := endpoint.Health(ctx); err == nil {
		return fmt.Errorf("%w (version %q on %s)", ErrAlreadyRunning, h.Version, endpoint)
	}
	ln, err := endpoint.Listen()
	if err != nil {
		return fmt.Errorf("listen on %s: %w", endpoint, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the command bridge on ln next to the tray loop. The first of
// them to fail stops the other. A missing tray backend leaves the host
// running headless.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	token := security.ResolveBridgeToken()
	if a.cfg.BridgeTokenFile != "" {
		if err := security.WriteTokenFile(a.cfg.BridgeTokenFile, token); err != nil {
			ln.Close()
			return err
		}
		logging.Debugf("bridge token written to %s", a.cfg.BridgeTokenFile)
	}

	srv := bridge.New(bridge.Options{
		Dispatcher:     a,
		Events:         a.window,
		Token:          token,
		AllowedOrigins: a.cfg.AllowedOrigins,
		Version:        a.version,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})
	g.Go(func() error {
		err := a.tray.Run(ctx)
		if errors.Is(err, tray.ErrUnavailable) {
			logging.Warnf("%v; running without a tray icon", err)
			return nil
		}
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
