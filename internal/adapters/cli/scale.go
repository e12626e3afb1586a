package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/bob-go/internal/application/replacement/commands"
)

// NewScaleCommand creates the scale command with subcommands
func NewScaleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Override the scale range of trees and props",
		Long: `Override the minimum or maximum random scale of a tree or prop prefab.

Examples:
  bob scale min tree:Oak 0.6
  bob scale max tree:Oak 1.4
  bob scale revert tree:Oak --remove`,
	}

	cmd.AddCommand(newScaleBoundCommand(commands.BoundMin))
	cmd.AddCommand(newScaleBoundCommand(commands.BoundMax))
	cmd.AddCommand(newScaleRevertCommand())

	return cmd
}

func newScaleBoundCommand(bound string) *cobra.Command {
	return &cobra.Command{
		Use:   bound + " <prefab> <value>",
		Short: "Set the " + bound + " scale of a prefab",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseContentRef(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid scale %q: %w", args[1], err)
			}
			return withSession(context.Background(), true, func(s *session) error {
				resp, err := s.send(&commands.ScaleCommand{Prefab: ref, Bound: bound, Value: value})
				if err != nil {
					return err
				}
				o := resp.(*commands.ScaleResponse).Override
				fmt.Printf("✓ %s scale %g..%g\n", ref, o.Min, o.Max)
				return nil
			})
		},
	}
}

func newScaleRevertCommand() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "revert <prefab>",
		Short: "Restore the prefab's own scale range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseContentRef(args[0])
			if err != nil {
				return err
			}
			return withSession(context.Background(), true, func(s *session) error {
				if _, err := s.send(&commands.RevertScaleCommand{Prefab: ref, RemoveEntry: remove}); err != nil {
					return err
				}
				fmt.Printf("✓ Reverted scale of %s\n", ref)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Also drop the override from the stored profile")
	return cmd
}
