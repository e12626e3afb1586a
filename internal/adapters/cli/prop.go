package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/application/replacement/commands"
)

// addedFlags are shared by prop add and prop update
type addedFlags struct {
	kindName    string
	parent      string
	lane        int
	prefabName  string
	angle       float64
	position    string
	probability int
	repeat      float64
	fixedHeight bool
}

func (f *addedFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kindName, "kind", "building", "Parent kind: building or network")
	cmd.Flags().StringVar(&f.parent, "parent", "", "Parent prefab name")
	cmd.Flags().IntVar(&f.lane, "lane", -1, "Network lane index")
	cmd.Flags().StringVar(&f.prefabName, "prefab", "", "Prop or tree to add, e.g. prop:Bench")
	cmd.Flags().Float64Var(&f.angle, "angle", 0, "Angle in degrees")
	cmd.Flags().StringVar(&f.position, "position", "", "Position x,y,z")
	cmd.Flags().IntVar(&f.probability, "probability", 100, "Spawn probability in percent")
	cmd.Flags().Float64Var(&f.repeat, "repeat", 0, "Repeat distance (network lanes)")
	cmd.Flags().BoolVar(&f.fixedHeight, "fixed-height", false, "Keep a fixed height (building slots)")
	cmd.MarkFlagRequired("parent")
}

// NewPropCommand creates the prop command with subcommands
func NewPropCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prop",
		Short: "Add, update and remove added props",
		Long: `Manage props and trees added to a building or network lane.

Added props are appended after the parent's own slots; removing one shifts
the indices of the added props after it.

Examples:
  bob prop add --parent "Corner Shop" --prefab prop:Bench --position 2,0,4
  bob prop update --parent "Corner Shop" --index 12 --prefab prop:Bench --angle 45
  bob prop remove --parent "Corner Shop" --index 12`,
	}

	cmd.AddCommand(newPropAddCommand())
	cmd.AddCommand(newPropUpdateCommand())
	cmd.AddCommand(newPropRemoveCommand())

	return cmd
}

func newPropAddCommand() *cobra.Command {
	f := &addedFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a prop or tree to a parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseParentKind(f.kindName)
			if err != nil {
				return err
			}
			ref, err := parseContentRef(f.prefabName)
			if err != nil {
				return err
			}
			pos, err := parseVector(f.position)
			if err != nil {
				return err
			}
			return withSession(context.Background(), true, func(s *session) error {
				resp, err := s.send(&commands.AddPropCommand{Params: engine.AddParams{
					ParentKind:     kind,
					Parent:         f.parent,
					Lane:           f.lane,
					Prefab:         ref,
					Angle:          f.angle,
					Position:       pos,
					Probability:    f.probability,
					RepeatDistance: f.repeat,
					CustomHeight:   f.fixedHeight,
				}})
				if err != nil {
					return err
				}
				added := resp.(*commands.AddPropResponse)
				if added.Index < 0 {
					fmt.Printf("✓ Added %s (pending: %s is not loaded)\n", added.Record.ID, ref)
					return nil
				}
				fmt.Printf("✓ Added %s at slot %d\n", added.Record.ID, added.Index)
				return nil
			})
		},
	}
	f.bind(cmd)
	cmd.MarkFlagRequired("prefab")
	return cmd
}

func newPropUpdateCommand() *cobra.Command {
	f := &addedFlags{}
	var index int
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit an added prop in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseParentKind(f.kindName)
			if err != nil {
				return err
			}
			ref, err := parseContentRef(f.prefabName)
			if err != nil {
				return err
			}
			pos, err := parseVector(f.position)
			if err != nil {
				return err
			}
			return withSession(context.Background(), true, func(s *session) error {
				if _, err := s.send(&commands.UpdatePropCommand{Params: engine.UpdateAddedParams{
					ParentKind:     kind,
					Parent:         f.parent,
					Lane:           f.lane,
					Index:          index,
					Prefab:         ref,
					Angle:          f.angle,
					Position:       pos,
					Probability:    f.probability,
					RepeatDistance: f.repeat,
					CustomHeight:   f.fixedHeight,
				}}); err != nil {
					return err
				}
				fmt.Printf("✓ Updated added prop at slot %d\n", index)
				return nil
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().IntVar(&index, "index", -1, "Slot index of the added prop")
	cmd.MarkFlagRequired("index")
	cmd.MarkFlagRequired("prefab")
	return cmd
}

func newPropRemoveCommand() *cobra.Command {
	var (
		kindName string
		parent   string
		lane     int
		index    int
	)
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an added prop",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseParentKind(kindName)
			if err != nil {
				return err
			}
			return withSession(context.Background(), true, func(s *session) error {
				if _, err := s.send(&commands.RemovePropCommand{ParentKind: kind, Parent: parent, Lane: lane, Index: index}); err != nil {
					return err
				}
				fmt.Printf("✓ Removed added prop at slot %d\n", index)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", "building", "Parent kind: building or network")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent prefab name")
	cmd.Flags().IntVar(&lane, "lane", -1, "Network lane index")
	cmd.Flags().IntVar(&index, "index", -1, "Slot index of the added prop")
	cmd.MarkFlagRequired("parent")
	cmd.MarkFlagRequired("index")
	return cmd
}
