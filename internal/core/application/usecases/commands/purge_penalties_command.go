package commands

import (
	"errors"

	"hako/internal/pkg/guard"
)

var (
	ErrPurgePenaltiesCommandIsNotConstructed = errors.New(
		"PurgePenaltiesCommand must be created via NewPurgePenaltiesCommand constructor",
	)
)

// PurgePenaltiesCommand deletes penalties that no longer block bookings.
type PurgePenaltiesCommand struct {
	guard guard.ConstructorGuard
}

func NewPurgePenaltiesCommand() PurgePenaltiesCommand {
	return PurgePenaltiesCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c PurgePenaltiesCommand) Validate() error {
	return c.guard.Validate(ErrPurgePenaltiesCommandIsNotConstructed)
}
