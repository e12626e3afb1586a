package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/bob-go/internal/application/replacement/queries"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <building|network> <parent>",
		Short: "Show the slots of a building or network",
		Long: `Show every prop and tree slot of a parent prefab grouped the way the
editor shows them, with the original, the effective replacement and all
active records per group, followed by the added props.

Examples:
  bob inspect building "Corner Shop"
  bob inspect network "Two-Lane Road"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseParentKind(args[0])
			if err != nil {
				return err
			}
			return withSession(context.Background(), false, func(s *session) error {
				resp, err := s.send(&queries.GetSlotsQuery{ParentKind: kind, Parent: args[1]})
				if err != nil {
					return err
				}
				printSlots(resp.(*queries.GetSlotsResponse))
				return nil
			})
		},
	}
}

func printSlots(resp *queries.GetSlotsResponse) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLOTS\tORIGINAL\tEFFECTIVE")
	for _, g := range resp.Groups {
		slots := make([]string, len(g.Slots))
		for i, ref := range g.Slots {
			slots[i] = fmt.Sprint(ref.Slot)
			if ref.Lane >= 0 {
				slots[i] = fmt.Sprintf("%d:%d", ref.Lane, ref.Slot)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", strings.Join(slots, ","), formatState(g.Original), formatRecord(g.Effective))
		for _, rec := range g.Records {
			if rec != g.Effective {
				fmt.Fprintf(w, "\t\t  overridden: %s\n", formatRecord(rec))
			}
		}
	}
	w.Flush()

	if len(resp.Added) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Added props:")
	for _, rec := range resp.Added {
		fmt.Printf("  [%d] %s %s pos=%s\n", rec.Slot, rec.ID, rec.Replacement, formatVector(rec.Offset))
	}
}
