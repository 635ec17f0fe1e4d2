package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemsafe/internal/bootstrap"
	"github.com/turtacn/chemsafe/internal/config"
	"github.com/turtacn/chemsafe/internal/infrastructure/database/postgres"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// withMigrator opens a Postgres connection for the alias store schema.
func withMigrator(cmd *cobra.Command, fn func(m *postgres.Migrator) error) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cc.Config.AliasStore.Driver != config.AliasDriverPostgres {
		return errors.InvalidParam("migrations apply only to the postgres alias store").
			WithDetail("alias_store.driver=" + cc.Config.AliasStore.Driver)
	}
	ctx, cancel := bootstrap.WithTimeout(cmd.Context(), cc.Timeout)
	defer cancel()

	conn, err := postgres.NewConnection(cc.Config.Database, cc.Logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	m, err := postgres.NewMigrator(ctx, conn.DB(), cc.Logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres alias store schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	down := &cobra.Command{
		Use:   "down [N]",
		Short: "Roll back the last N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.InvalidParam("steps must be an integer").WithDetail("steps=" + args[0])
				}
				steps = n
			}
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				return printVersion(cmd, m)
			})
		},
	}

	force := &cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.InvalidParam("version must be an integer").WithDetail("version=" + args[0])
			}
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	cmd.AddCommand(up, down, version, force)
	return cmd
}

func printVersion(cmd *cobra.Command, m *postgres.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cc, _ := GetCLIContext(cmd)
	if cc != nil && cc.OutputFormat == OutputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{"version": v, "dirty": dirty})
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
	return nil
}
