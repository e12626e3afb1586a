package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/bob-go/internal/adapters/xmlconfig"
	"github.com/andrescamacho/bob-go/internal/application/replacement/commands"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xml>",
		Short: "Export the active profile as an XML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(context.Background(), false, func(s *session) error {
				doc := s.engine.Export()
				if err := xmlconfig.SaveFile(args[0], doc); err != nil {
					return fmt.Errorf("failed to export: %w", err)
				}
				fmt.Printf("✓ Exported %d records to %s\n", doc.RecordCount(), args[0])
				return nil
			})
		},
	}
}

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xml>",
		Short: "Replace the active profile with an XML document",
		Long: `Apply the given XML document to the scene and store it as the active
profile, replacing what was stored before. Records naming props or trees
that are not loaded are kept but stay inert.

Example:
  bob import bob-config.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := xmlconfig.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return runSession(context.Background(), false, true, func(s *session) error {
				if err := s.apply(doc); err != nil {
					return err
				}
				r := s.imported
				fmt.Printf("✓ Imported %d records, %d added props, %d packs, %d scales\n", r.Records, r.Added, r.Packs, r.Scales)
				if r.Skipped > 0 {
					fmt.Printf("  %d records could not be applied\n", r.Skipped)
				}
				for _, name := range r.Unresolved {
					fmt.Printf("  unresolved: %s\n", name)
				}
				return nil
			})
		},
	}
}

// NewResetCommand creates the reset command
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Revert every replacement, added prop, pack and scale",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(context.Background(), true, func(s *session) error {
				if _, err := s.send(&commands.ResetCommand{}); err != nil {
					return err
				}
				fmt.Println("✓ Profile reset")
				return nil
			})
		},
	}
}
