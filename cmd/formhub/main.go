package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formhub/backend/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "formhub",
		Short: "FormHub - operator tools for the form submission sync hub",
		Long: `FormHub pulls contact form submissions from remote WordPress sites
into a central store. These commands run syncs, register sites and
troubleshoot connectivity without going through the HTTP API.`,
	}

	rootCmd.AddCommand(cli.SyncCmd())
	rootCmd.AddCommand(cli.DiagnoseCmd())
	rootCmd.AddCommand(cli.SeedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
