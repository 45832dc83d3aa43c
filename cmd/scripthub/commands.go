package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/scripthub/internal/ipc"
	"github.com/example/scripthub/internal/logging"
)

const (
	sourceStore = "store"
	sourceEnv   = "env"
	sourceAuto  = "auto"
)

func newCredentialCmd(opts *rootOptions) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:       "credential [store|env|auto]",
		Short:     "Look up the GitHub token the way the frontend does",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{sourceStore, sourceEnv, sourceAuto},
		RunE: func(cmd *cobra.Command, args []string) error {
			source := sourceAuto
			if len(args) == 1 {
				source = args[0]
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}

			var (
				token string
				found bool
				from  = source
			)
			switch source {
			case sourceStore:
				token, found, err = a.CredentialFromStore(cmd.Context())
			case sourceEnv:
				token, found = a.CredentialFromEnv()
			default:
				res, ok, rerr := a.ResolveCredential(cmd.Context())
				token, found, err, from = res.Token, ok, rerr, res.Source
			}
			if err != nil && !found {
				return err
			}

			out := cmd.OutOrStdout()
			if !found {
				fmt.Fprintln(out, "no credential found")
				return nil
			}
			if !reveal {
				token = logging.MaskIdentifier(token)
			}
			fmt.Fprintf(out, "%s: %s\n", from, token)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the token in clear text")
	return cmd
}

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [token]",
		Short: "Check a token against the GitHub user endpoint",
		Long: `Check a token against the GitHub user endpoint. Without an argument the
token is resolved from the credential store, then the environment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			var token string
			if len(args) == 1 {
				token = strings.TrimSpace(args[0])
			} else {
				res, ok, err := a.ResolveCredential(cmd.Context())
				if err != nil && !ok {
					return err
				}
				if !ok {
					return errors.New("no credential to verify")
				}
				token = res.Token
			}

			valid, err := a.VerifyToken(cmd.Context(), token)
			if err != nil {
				return err
			}
			if valid {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
			}
			return nil
		},
	}
}

func newAutostartCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage launching ScriptHub at login",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Start ScriptHub minimized at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(opts)
				if err != nil {
					return err
				}
				if err := a.EnableAutostart(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "autostart enabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop launching ScriptHub at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(opts)
				if err != nil {
					return err
				}
				if err := a.DisableAutostart(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether ScriptHub launches at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(opts)
				if err != nil {
					return err
				}
				enabled, err := a.AutostartEnabled()
				if err != nil {
					return err
				}
				if enabled {
					fmt.Fprintln(cmd.OutOrStdout(), "enabled")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "disabled")
				}
				return nil
			},
		},
	)
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a ScriptHub host is serving the bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			endpoint := ipc.NewEndpoint(cfg.BridgeAddr)
			h, err := endpoint.Health(cmd.Context())
			if err != nil {
				logging.Debugf("health probe: %v", err)
				fmt.Fprintf(cmd.OutOrStdout(), "not running (%s)\n", endpoint.URL())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "running %s (%s)\n", h.Version, endpoint.URL())
			return nil
		},
	}
}
