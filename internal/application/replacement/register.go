package replacement

import (
	"fmt"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/application/replacement/commands"
	"github.com/andrescamacho/bob-go/internal/application/replacement/queries"
)

// RegisterHandlers wires every replacement command and query handler of e
// into the mediator
func RegisterHandlers(m common.Mediator, e *engine.Engine) error {
	registrations := []func() error{
		func() error { return common.RegisterHandler[*commands.ReplaceCommand](m, commands.NewReplaceHandler(e)) },
		func() error {
			return common.RegisterHandler[*commands.RemoveReplacementCommand](m, commands.NewRemoveReplacementHandler(e))
		},
		func() error { return common.RegisterHandler[*commands.AddPropCommand](m, commands.NewAddPropHandler(e)) },
		func() error { return common.RegisterHandler[*commands.RemovePropCommand](m, commands.NewRemovePropHandler(e)) },
		func() error { return common.RegisterHandler[*commands.UpdatePropCommand](m, commands.NewUpdatePropHandler(e)) },
		func() error {
			return common.RegisterHandler[*commands.SetPackStatusCommand](m, commands.NewSetPackStatusHandler(e))
		},
		func() error { return common.RegisterHandler[*commands.ScaleCommand](m, commands.NewScaleHandler(e)) },
		func() error { return common.RegisterHandler[*commands.RevertScaleCommand](m, commands.NewRevertScaleHandler(e)) },
		func() error { return common.RegisterHandler[*commands.ResetCommand](m, commands.NewResetHandler(e)) },
		func() error { return common.RegisterHandler[*queries.GetSlotsQuery](m, queries.NewGetSlotsHandler(e)) },
		func() error { return common.RegisterHandler[*queries.ListPacksQuery](m, queries.NewListPacksHandler(e)) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register handler: %w", err)
		}
	}
	return nil
}
