package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/bootstrap"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/internal/intelligence/extractor"
)

type lookupOptions struct {
	id            string
	emergencyType string
	sectionsOnly  bool
}

func newLookupCmd(open ServiceOpener) *cobra.Command {
	o := &lookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "Resolve a chemical and print its hazard profile",
		Long: "Resolve NAME (and optionally a graph entity id) to a chemical and print the\n" +
			"hazard sections and emergency procedures recorded for it.",
		Example: "  chemsafe lookup acetone\n" +
			"  chemsafe lookup \"Ethyl acetate\" --type Fire -o json",
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := lookup.Query{ID: o.id, EmergencyType: o.emergencyType}
			if len(args) == 1 {
				q.Name = args[0]
			}
			return withService(cmd, open, bootstrap.Options{}, func(ctx context.Context, cc *CLIContext, svc lookup.Service) error {
				report, err := svc.Lookup(ctx, q)
				if err != nil {
					return err
				}
				cc.Logger.Debug("chemical resolved",
					logging.String("query", q.Name),
					logging.String("entity_id", report.EntityID),
					logging.String("tier", report.MatchTier))
				return writeReport(cmd.OutOrStdout(), cc.OutputFormat, report, true, !o.sectionsOnly)
			})
		},
	}
	cmd.Flags().StringVar(&o.id, "id", "", "graph entity id to try before the name")
	cmd.Flags().StringVarP(&o.emergencyType, "type", "t", "", "emergency type filter ("+strings.Join(extractor.EmergencyTypes(), ", ")+")")
	cmd.Flags().BoolVar(&o.sectionsOnly, "sections-only", false, "print only the hazard sections")
	return cmd
}

func newProceduresCmd(open ServiceOpener) *cobra.Command {
	o := &lookupOptions{}
	cmd := &cobra.Command{
		Use:   "procedures NAME",
		Short: "Print the emergency procedures for a chemical",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := lookup.Query{Name: args[0], ID: o.id, EmergencyType: o.emergencyType}
			return withService(cmd, open, bootstrap.Options{}, func(ctx context.Context, cc *CLIContext, svc lookup.Service) error {
				report, err := svc.Lookup(ctx, q)
				if err != nil {
					return err
				}
				return writeReport(cmd.OutOrStdout(), cc.OutputFormat, report, false, true)
			})
		},
	}
	cmd.Flags().StringVar(&o.id, "id", "", "graph entity id to try before the name")
	cmd.Flags().StringVarP(&o.emergencyType, "type", "t", "", "emergency type filter ("+strings.Join(extractor.EmergencyTypes(), ", ")+")")
	return cmd
}

func newAliasesCmd(open ServiceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "aliases NAME",
		Short: "Print the main name and every known alias of a chemical name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return withService(cmd, open, bootstrap.Options{}, func(_ context.Context, cc *CLIContext, svc lookup.Service) error {
				return writeAliases(cmd.OutOrStdout(), cc.OutputFormat, name, svc.GetMainName(name), svc.GetAllPossibleNames(name))
			})
		},
	}
}
