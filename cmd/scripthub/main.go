package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/scripthub/internal/app"
	"github.com/example/scripthub/internal/config"
	"github.com/example/scripthub/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	exit       = os.Exit
	loadConfig = config.Load
)

type rootOptions struct {
	debug     bool
	minimized bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "scripthub",
		Short: "ScriptHub host: tray icon and command bridge for the ScriptHub frontend",
		Long: `ScriptHub runs in the notification area and serves the ScriptHub frontend
over a loopback command bridge: credential lookup, token verification,
window control and launch at login.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				logging.EnableDebug()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "enable verbose logging")
	// Read from os.Args before cobra runs; registered so parsing accepts it.
	flags.Bool("console", false, "keep the console window visible (Windows)")
	if !consoleFlagSupported {
		_ = flags.MarkHidden("console")
	}
	root.Flags().BoolVar(&opts.minimized, "minimized", false, "start with the main window hidden")

	root.AddCommand(
		newCredentialCmd(opts),
		newVerifyCmd(opts),
		newAutostartCmd(opts),
		newStatusCmd(),
	)
	return root
}

func newApp(opts *rootOptions) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Debug {
		logging.EnableDebug()
	}
	return app.New(cfg, app.Options{Minimized: opts.minimized, Version: version})
}
