package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// printJSON outputs data as indented JSON.
func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes a formatted error message to stderr. Application errors
// show their code and detail.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Detail != "" {
			msg += " (" + appErr.Detail + ")"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s [%s] %s\n", color.RedString("Error:"), appErr.Code, msg)
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// PrintSuccess writes a success line to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, color.New(color.Bold, color.FgCyan).Sprint(title))
}

// writeReport renders a lookup report. showSections and showProcedures
// select the parts to print.
func writeReport(w io.Writer, format string, r *lookup.ChemicalReport, showSections, showProcedures bool) error {
	switch format {
	case OutputJSON:
		out := *r
		if !showSections {
			out.Sections = nil
		}
		if !showProcedures {
			out.Procedures = nil
		}
		return printJSON(w, out)

	case OutputTable:
		table := tablewriter.NewWriter(w)
		table.Header("Group", "Item", "Value")
		table.Append([]string{"Chemical", "Name", r.DisplayName})
		table.Append([]string{"Chemical", "Main name", r.MainName})
		table.Append([]string{"Chemical", "Match", r.MatchTier + " (" + r.MatchedName + ")"})
		if showSections {
			for _, s := range r.Sections {
				for _, c := range s.Content {
					table.Append([]string{"Profile", s.Title, c})
				}
			}
		}
		if showProcedures {
			for _, g := range r.Procedures {
				for _, step := range g.Steps {
					table.Append([]string{"Procedure", g.Category, step})
				}
			}
		}
		return table.Render()

	default:
		heading(w, r.DisplayName)
		fmt.Fprintf(w, "main name: %s  match: %s via %q\n", r.MainName, tierLabel(r.MatchTier), r.MatchedName)
		if showSections {
			writeSections(w, r.Sections)
		}
		if showProcedures {
			writeProcedures(w, r.Procedures)
		}
		return nil
	}
}

func writeSections(w io.Writer, sections []chemical.Section) {
	for _, s := range sections {
		fmt.Fprintf(w, "\n%s\n", color.YellowString(s.Title))
		for _, c := range s.Content {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
}

func writeProcedures(w io.Writer, groups []chemical.StepGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "\nno emergency procedures recorded")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s\n", color.RedString(g.Category))
		for _, step := range g.Steps {
			if strings.HasPrefix(step, "•") {
				fmt.Fprintf(w, "  %s\n", step)
				continue
			}
			fmt.Fprintf(w, "  - %s\n", step)
		}
	}
}

// tierLabel colors the match tier: exact matches green, alias matches
// yellow.
func tierLabel(tier string) string {
	switch {
	case strings.HasPrefix(tier, "alias"):
		return color.YellowString(tier)
	case tier == "":
		return tier
	default:
		return color.GreenString(tier)
	}
}

func writeAliases(w io.Writer, format, name, mainName string, names []string) error {
	switch format {
	case OutputJSON:
		return printJSON(w, map[string]interface{}{
			"name":      name,
			"main_name": mainName,
			"names":     names,
		})
	case OutputTable:
		table := tablewriter.NewWriter(w)
		table.Header("#", "Name", "Main")
		for i, n := range names {
			mark := ""
			if n == mainName {
				mark = "*"
			}
			table.Append([]string{fmt.Sprintf("%d", i+1), n, mark})
		}
		return table.Render()
	default:
		fmt.Fprintf(w, "%s -> %s\n", name, color.GreenString(mainName))
		for _, n := range names {
			fmt.Fprintf(w, "  %s\n", n)
		}
		return nil
	}
}

func writeStatus(w io.Writer, format string, st lookup.Status) error {
	if format == OutputJSON {
		return printJSON(w, st)
	}
	ready := color.RedString("not loaded")
	if st.GraphReady {
		ready = color.GreenString("ready")
	}
	rows := [][]string{
		{"instance", st.InstanceID},
		{"graph", ready},
		{"graph source", st.GraphSource},
		{"snapshot version", fmt.Sprintf("%d", st.SnapshotVersion)},
		{"entities", fmt.Sprintf("%d", st.Entities)},
		{"chemicals", fmt.Sprintf("%d", st.Chemicals)},
		{"alias rows", fmt.Sprintf("%d (builtin %d, graph %d)", st.Aliases.Rows, st.Aliases.BuiltinRows, st.Aliases.GraphRows)},
	}
	if st.Aliases.LastError != "" {
		rows = append(rows, []string{"alias last error", color.RedString(st.Aliases.LastError)})
	}
	if format == OutputTable {
		table := tablewriter.NewWriter(w)
		table.Header("Field", "Value")
		for _, r := range rows {
			table.Append(r)
		}
		return table.Render()
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-18s %s\n", r[0]+":", r[1])
	}
	return nil
}
