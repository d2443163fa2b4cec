package http

import (
	"context"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/core/application/usecases/queries"
)

// CommandHandler runs a command of type C.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, cmd C) error
}

// QueryHandler answers a query of type Q with R.
type QueryHandler[Q, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Handlers are the use cases the server exposes.
type Handlers struct {
	CreateAppointment   CommandHandler[commands.CreateAppointmentCommand]
	AddProducts         CommandHandler[commands.AddProductsCommand]
	UpdateAppointment   CommandHandler[commands.UpdateAppointmentCommand]
	ConfirmAppointment  CommandHandler[commands.ConfirmAppointmentCommand]
	CancelAppointment   CommandHandler[commands.CancelAppointmentCommand]
	CompleteAppointment CommandHandler[commands.CompleteAppointmentCommand]
	RegisterPaidOrder   CommandHandler[commands.RegisterPaidOrderCommand]
	PurgePenalties      QueryHandler[commands.PurgePenaltiesCommand, int64]

	PlanLockers             QueryHandler[queries.PlanLockersQuery, queries.PlanLockersQueryResponse]
	CheckLockerAvailability QueryHandler[queries.CheckLockerAvailabilityQuery, queries.CheckLockerAvailabilityQueryResponse]
	GetUserAppointments     QueryHandler[queries.GetUserAppointmentsQuery, []queries.AppointmentView]
	GetAppointment          QueryHandler[queries.GetAppointmentQuery, queries.AppointmentView]
}
