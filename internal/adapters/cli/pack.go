package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/bob-go/internal/application/replacement/commands"
	"github.com/andrescamacho/bob-go/internal/application/replacement/queries"
)

// NewPackCommand creates the pack command with subcommands
func NewPackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "List, apply and revert replacement packs",
		Long: `Replacement packs swap sets of network props at once. Packs are defined in
the configuration profile; when two applied packs replace the same prop, the
last applied one wins.

Examples:
  bob pack list
  bob pack apply "Lamps Pack"
  bob pack revert "Lamps Pack"`,
	}

	cmd.AddCommand(newPackListCommand())
	cmd.AddCommand(newPackStatusCommand("apply", "Apply a replacement pack", true))
	cmd.AddCommand(newPackStatusCommand("revert", "Revert a replacement pack", false))

	return cmd
}

func newPackListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List replacement packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(context.Background(), false, func(s *session) error {
				resp, err := s.send(&queries.ListPacksQuery{})
				if err != nil {
					return err
				}
				packs := resp.(*queries.ListPacksResponse).Packs
				if len(packs) == 0 {
					fmt.Println("No replacement packs defined")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tRECORDS\tAPPLIED\tCONFLICTS\tALL LOADED")
				for _, p := range packs {
					fmt.Fprintf(w, "%s\t%d\t%t\t%t\t%t\n", p.Name, p.Records, p.Applied, p.Conflicts, !p.NotAllLoaded)
				}
				return w.Flush()
			})
		},
	}
}

func newPackStatusCommand(use, short string, apply bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(context.Background(), true, func(s *session) error {
				resp, err := s.send(&commands.SetPackStatusCommand{Name: args[0], Apply: apply})
				if err != nil {
					return err
				}
				status := resp.(*commands.SetPackStatusResponse)
				if status.Conflicts {
					fmt.Printf("Warning: %s replaces props already replaced by another applied pack\n", args[0])
				}
				if status.NotAllLoaded {
					fmt.Printf("Warning: some props of %s are not loaded\n", args[0])
				}
				fmt.Printf("✓ %s applied: %t\n", args[0], status.Applied)
				return nil
			})
		},
	}
}
