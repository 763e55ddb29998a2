package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/formhub/backend/internal/model"
)

type seedFile struct {
	Sites []seedSite `yaml:"sites"`
}

type seedSite struct {
	Name                string `yaml:"name"`
	URL                 string `yaml:"url"`
	Username            string `yaml:"username"`
	ApplicationPassword string `yaml:"application_password"`
	ContactFormID       *int64 `yaml:"contact_form_id"`
	Inactive            bool   `yaml:"inactive"`
}

// SeedCmd returns the seed command: register sites from a YAML file.
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <sites.yaml>",
		Short: "Register sites from a YAML file",
		Long: `Reads a YAML file of site definitions and inserts them.

File format:
  sites:
    - name: Acme Corp
      url: https://acme.example.com
      username: sync-bot
      application_password: "xxxx xxxx xxxx xxxx"
      contact_form_id: 3      # optional, skips discovery`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var file seedFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if len(file.Sites) == 0 {
				return fmt.Errorf("%s contains no sites", args[0])
			}
			for i, s := range file.Sites {
				if err := validateSeedSite(s); err != nil {
					return fmt.Errorf("site %d: %w", i+1, err)
				}
			}

			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			for _, s := range file.Sites {
				site := &model.Site{
					Name:                s.Name,
					URL:                 strings.TrimRight(s.URL, "/"),
					Username:            s.Username,
					ApplicationPassword: s.ApplicationPassword,
					ContactFormID:       s.ContactFormID,
					IsActive:            !s.Inactive,
				}
				if err := e.sites.Create(cmd.Context(), site); err != nil {
					return fmt.Errorf("create %s: %w", s.Name, err)
				}
				fmt.Printf("%s %s (id %d)\n", color.New(color.FgGreen).Sprint("✓"), site.Name, site.ID)
			}
			fmt.Printf("%d sites registered\n", len(file.Sites))
			return nil
		},
	}
}

func validateSeedSite(s seedSite) error {
	switch {
	case s.Name == "":
		return fmt.Errorf("name is required")
	case !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://"):
		return fmt.Errorf("url must start with http:// or https://")
	case s.Username == "":
		return fmt.Errorf("username is required")
	case s.ApplicationPassword == "":
		return fmt.Errorf("application_password is required")
	}
	return nil
}
