package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/noxus/internal/client/cli"
	"github.com/dmitrijs2005/noxus/internal/client/config"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "noxus [-c config] [-a addr] [-d db] [-s scheme] [-l link-addr] [-i seconds] [-v level]",
		Short: "Track a streak and climb the tiers",
		// Flags belong to the config loader, which reads them from os.Args.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfig()
			l := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

			app, err := cli.NewApp(cmd.Context(), cfg, l)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	root.AddCommand(newOpenCmd())
	return root
}

// newOpenCmd hands a deep link to the running client. It is what the
// com.ascennoxus.app URL handler should invoke.
func newOpenCmd() *cobra.Command {
	var defaults config.Config
	defaults.LoadDefaults()

	var addr string
	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Forward a deep link to the running client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ForwardLink(cmd.Context(), addr, args[0]); err != nil {
				return fmt.Errorf("is the client running? %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaults.DeepLinkAddr, "address the running client listens on for deep links")
	return cmd
}
