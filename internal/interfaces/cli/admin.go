package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/bootstrap"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
)

func newReloadCmd(open ServiceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Rebuild the alias table from the current graph",
		Long: "Load the graph, rebuild the alias table in the configured store and, when\n" +
			"kafka.enabled is set, announce the reload to running instances.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, bootstrap.Options{Publish: true}, func(ctx context.Context, cc *CLIContext, svc lookup.Service) error {
				start := time.Now()
				if err := svc.Reload(ctx); err != nil {
					return err
				}
				st := svc.Status()
				if cc.OutputFormat == OutputJSON {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{
						"took":   time.Since(start).String(),
						"status": st,
					})
				}
				PrintSuccess(cmd, fmt.Sprintf("reloaded %d chemicals, %d alias rows in %s",
					st.Chemicals, st.Aliases.Rows, time.Since(start).Round(time.Millisecond)))
				return nil
			})
		},
	}
}

func newStatusCmd(open ServiceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Load the configured graph and alias store and print their state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, open, bootstrap.Options{}, func(_ context.Context, cc *CLIContext, svc lookup.Service) error {
				return writeStatus(cmd.OutOrStdout(), cc.OutputFormat, svc.Status())
			})
		},
	}
}

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cc.Config.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The server logs at the configured level, not the CLI default.
			logger, err := logging.NewLogger(cc.Config.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := bootstrap.New(ctx, cc.Config, logger, bootstrap.Options{Publish: true, Consume: true})
			if err != nil {
				return err
			}
			defer app.Close()

			logger.Info("starting chemsafe API server",
				logging.String("version", Version),
				logging.String("addr", cc.Config.Server.Addr()))
			return app.Serve(ctx, nil, Version)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	return cmd
}
