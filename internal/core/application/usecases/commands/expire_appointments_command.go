package commands

import (
	"errors"

	"hako/internal/pkg/guard"
)

var (
	ErrExpireAppointmentsCommandIsNotConstructed = errors.New(
		"ExpireAppointmentsCommand must be created via NewExpireAppointmentsCommand constructor",
	)
)

// ExpireAppointmentsCommand triggers the no-show sweep.
type ExpireAppointmentsCommand struct {
	guard guard.ConstructorGuard
}

func NewExpireAppointmentsCommand() ExpireAppointmentsCommand {
	return ExpireAppointmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c ExpireAppointmentsCommand) Validate() error {
	return c.guard.Validate(ErrExpireAppointmentsCommandIsNotConstructed)
}
