package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath  string
	profile     string
	scenePath   string
	storage     string
	liveApplied bool
	dumpMetrics bool
	verbose     bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bob",
		Short: "BOB - Replace props and trees in buildings and networks",
		Long: `BOB edits the props and trees placed inside building and network prefabs.

Every command loads the scene, applies the stored configuration profile,
runs the requested change and stores the resulting configuration again.

Examples:
  bob inspect building "Corner Shop"
  bob replace --tier grouped --parent "Corner Shop" --target tree:Oak --replacement tree:Pine
  bob prop add --parent "Corner Shop" --prefab prop:Bench --position 2,0,4
  bob pack list
  bob pack apply "Lamps Pack"
  bob scale min tree:Oak 0.6
  bob export bob-config.xml`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to bob.yaml (default: search ., ./configs, ~/.bob)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "",
		"Configuration profile name (overrides engine.profile)")
	rootCmd.PersistentFlags().StringVar(&scenePath, "scene", "",
		"Path to the YAML scene (overrides engine.scene_path)")
	rootCmd.PersistentFlags().StringVar(&storage, "storage", "",
		"Configuration storage: xml or database (overrides engine.storage)")
	rootCmd.PersistentFlags().BoolVar(&liveApplied, "live-applied", false,
		"The scene already renders the stored configuration")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false,
		"Print engine metrics to stderr when the command finishes")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewReplaceCommand())
	rootCmd.AddCommand(NewRevertCommand())
	rootCmd.AddCommand(NewPropCommand())
	rootCmd.AddCommand(NewPackCommand())
	rootCmd.AddCommand(NewScaleCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewResetCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
