package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/bob-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration settings",
		Long: `Show BOB configuration settings and stored profiles.

Configuration is loaded from multiple sources with priority:
1. Command line flags (--profile, --scene, --storage)
2. Environment variables (BOB_* prefix, e.g. BOB_ENGINE_PROFILE)
3. Config file (bob.yaml)
4. Default values

Examples:
  bob config show
  bob config profiles`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigProfilesCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Engine:")
			fmt.Printf("  Scene:        %s\n", cfg.Engine.ScenePath)
			fmt.Printf("  Storage:      %s\n", cfg.Engine.Storage)
			fmt.Printf("  Document dir: %s\n", cfg.Engine.DocumentDir)
			fmt.Printf("  Profile:      %s\n", cfg.Engine.Profile)
			fmt.Printf("  Live applied: %t\n", cfg.Engine.LiveApplied)
			fmt.Printf("  Lock file:    %s\n", cfg.Engine.LockFile)
			fmt.Println("Database:")
			fmt.Printf("  Type:         %s\n", cfg.Database.Type)
			if cfg.Database.Type == config.DatabaseSQLite {
				fmt.Printf("  Path:         %s\n", cfg.Database.Path)
			} else if cfg.Database.URL != "" {
				fmt.Println("  URL:          (set)")
			} else {
				fmt.Printf("  Host:         %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
			}
			fmt.Println("Logging:")
			fmt.Printf("  Level:        %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:       %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:       %s\n", cfg.Logging.Output)
			fmt.Printf("  Persist:      %t\n", cfg.Logging.Persist)
			fmt.Println("Metrics:")
			fmt.Printf("  Enabled:      %t\n", cfg.Metrics.Enabled)
			return nil
		},
	}
}

// newConfigProfilesCommand lists the profiles of the configured storage
func newConfigProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List stored configuration profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(context.Background(), false, func(s *session) error {
				names, err := s.repo.List(s.ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Println("No stored profiles")
					return nil
				}
				for _, name := range names {
					marker := " "
					if name == s.cfg.Engine.Profile {
						marker = "*"
					}
					fmt.Printf("%s %s\n", marker, name)
				}
				return nil
			})
		},
	}
}
