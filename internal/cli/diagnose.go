package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/formhub/backend/internal/model"
)

// DiagnoseCmd returns the diagnose command: connectivity and plugin probes
// for one site.
func DiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose <siteID>",
		Short: "Check site reachability, the forms API and plugin state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || siteID <= 0 {
				return fmt.Errorf("invalid site id %q", args[0])
			}

			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			report, err := e.diagnostics.Run(cmd.Context(), siteID)
			if err != nil {
				return err
			}

			fmt.Printf("Site %d\n", report.SiteID)
			printCheck("WordPress REST API", report.Reachable)
			printCheck("Forms plugin API", report.PluginAPI)
			printPlugin(report.Plugin)

			if !report.Reachable.OK {
				return fmt.Errorf("site is unreachable")
			}
			return nil
		},
	}
}

func printCheck(name string, c model.DiagnosticsCheck) {
	if c.OK {
		fmt.Printf("  %s %s\n", color.New(color.FgGreen).Sprint("✓"), name)
		return
	}
	fmt.Printf("  %s %s", color.New(color.FgRed).Sprint("✗"), name)
	if c.Error != "" {
		fmt.Printf(": %s", c.Error)
	}
	fmt.Println()
}

func printPlugin(p model.PluginCheck) {
	switch {
	case p.Active:
		fmt.Printf("  %s Plugin active", color.New(color.FgGreen).Sprint("✓"))
		if p.Version != "" {
			fmt.Printf(" (v%s)", p.Version)
		}
		fmt.Println()
	case p.Installed:
		fmt.Printf("  %s Plugin installed but not active\n", color.New(color.FgYellow).Sprint("!"))
	default:
		fmt.Printf("  %s Plugin not installed", color.New(color.FgRed).Sprint("✗"))
		if p.Error != "" {
			fmt.Printf(": %s", p.Error)
		}
		fmt.Println()
	}
}
