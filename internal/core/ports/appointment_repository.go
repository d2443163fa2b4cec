package ports

import (
	"context"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
)

// AppointmentRepository defines the persistence contract for appointments,
// their pickup items and the locker claims of active appointments.
//
// Add and Update keep one claim per (date, slot, locker) for every active
// appointment and drop the claims once it becomes terminal. A claim already
// held by another appointment fails with *services.LockerConflictError.
type AppointmentRepository interface {
	Add(ctx context.Context, a *appointment.Appointment) error
	Update(ctx context.Context, a *appointment.Appointment) error

	// Get returns errs.ObjectNotFoundError when the appointment does not exist.
	Get(ctx context.Context, id kernel.UUID) (*appointment.Appointment, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*appointment.Appointment, error)

	// FindActiveBySlot returns every active appointment on date at slot, any user.
	FindActiveBySlot(ctx context.Context, date kernel.Date, slot kernel.TimeSlot) ([]*appointment.Appointment, error)

	// FindActiveByUser returns the user's active appointments.
	FindActiveByUser(ctx context.Context, userID kernel.UUID) ([]*appointment.Appointment, error)

	// FindActiveByOrder returns the active appointments collecting units of orderID.
	FindActiveByOrder(ctx context.Context, orderID kernel.UUID) ([]*appointment.Appointment, error)

	// FindActiveOnOrBefore returns active appointments dated on or before date,
	// oldest first. The expiry sweep narrows them down to lapsed ones.
	FindActiveOnOrBefore(ctx context.Context, date kernel.Date) ([]*appointment.Appointment, error)
}
