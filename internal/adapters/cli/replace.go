package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/application/replacement/commands"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
)

// NewReplaceCommand creates the replace command
func NewReplaceCommand() *cobra.Command {
	var (
		kindName    string
		tierName    string
		parent      string
		lane        int
		slot        int
		target      string
		replaceWith string
		angle       float64
		offset      string
		probability int
		repeat      float64
		fixedHeight bool
		existingID  string
	)

	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace a prop or tree",
		Long: `Replace a prop or tree at one of the replacement tiers.

Tiers, highest priority first:
  individual  - one slot of one parent (--parent, --slot, --lane for networks)
  grouped     - every matching slot of one parent (--parent)
  all         - every matching slot of every loaded parent of the kind

Pass --id to edit or move an existing record.

Examples:
  bob replace --tier grouped --parent "Corner Shop" --target tree:Oak --replacement tree:Pine
  bob replace --tier individual --parent "Corner Shop" --slot 3 --replacement prop:Bench --angle 90
  bob replace --kind network --tier all --target prop:Streetlight --replacement prop:Lamp --repeat 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseParentKind(kindName)
			if err != nil {
				return err
			}
			tier, err := replacement.ParseTier(tierName)
			if err != nil {
				return err
			}
			targetRef, err := parseContentRef(target)
			if err != nil {
				return err
			}
			replacementRef, err := parseContentRef(replaceWith)
			if err != nil {
				return err
			}
			offsetVec, err := parseVector(offset)
			if err != nil {
				return err
			}

			return withSession(context.Background(), true, func(s *session) error {
				resp, err := s.send(&commands.ReplaceCommand{
					Params: engine.ReplaceParams{
						Tier:           tier,
						ParentKind:     kind,
						Parent:         parent,
						Lane:           lane,
						Slot:           slot,
						Target:         targetRef,
						Replacement:    replacementRef,
						Angle:          angle,
						Offset:         offsetVec,
						Probability:    probability,
						RepeatDistance: repeat,
						CustomHeight:   fixedHeight,
					},
					ExistingID: existingID,
				})
				if err != nil {
					return err
				}
				fmt.Printf("✓ %s\n", formatRecord(resp.(*commands.ReplaceResponse).Record))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "building", "Parent kind: building or network")
	cmd.Flags().StringVar(&tierName, "tier", "grouped", "Replacement tier: individual, grouped or all")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent prefab name (individual and grouped tiers)")
	cmd.Flags().IntVar(&lane, "lane", -1, "Network lane index (individual tier)")
	cmd.Flags().IntVar(&slot, "slot", -1, "Slot index (individual tier)")
	cmd.Flags().StringVar(&target, "target", "", "Prefab to replace, e.g. tree:Oak (individual tier derives it from the slot)")
	cmd.Flags().StringVar(&replaceWith, "replacement", "", "Replacement prefab, e.g. prop:Bench")
	cmd.Flags().Float64Var(&angle, "angle", 0, "Angle adjustment in degrees")
	cmd.Flags().StringVar(&offset, "offset", "", "Position offset x,y,z")
	cmd.Flags().IntVar(&probability, "probability", 100, "Spawn probability in percent")
	cmd.Flags().Float64Var(&repeat, "repeat", 0, "Repeat distance (network lanes)")
	cmd.Flags().BoolVar(&fixedHeight, "fixed-height", false, "Keep a fixed height (building slots)")
	cmd.Flags().StringVar(&existingID, "id", "", "ID of the record to edit")
	cmd.MarkFlagRequired("replacement")

	return cmd
}

// NewRevertCommand creates the revert command
func NewRevertCommand() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "revert <record-id>",
		Short: "Revert a replacement",
		Long: `Remove a stored replacement; the affected slots fall back to the next
lower tier or to their original prop or tree.

Example:
  bob revert grouped-a3f8e2b1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseParentKind(kindName)
			if err != nil {
				return err
			}
			return withSession(context.Background(), true, func(s *session) error {
				resp, err := s.send(&commands.RemoveReplacementCommand{ParentKind: kind, RecordID: args[0]})
				if err != nil {
					return err
				}
				fmt.Printf("✓ Reverted %s\n", formatRecord(resp.(*commands.RemoveReplacementResponse).Record))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "building", "Parent kind: building or network")

	return cmd
}
