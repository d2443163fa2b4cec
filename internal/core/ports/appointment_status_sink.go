package ports

import (
	"context"
	"time"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
)

// SlotSnapshot is where an appointment was before a change.
type SlotSnapshot struct {
	Date     kernel.Date
	TimeSlot kernel.TimeSlot
	Lockers  []int
}

// AppointmentChange describes a committed appointment transition.
type AppointmentChange struct {
	AppointmentID kernel.UUID
	UserID        kernel.UUID
	OrderID       kernel.UUID
	Date          kernel.Date
	TimeSlot      kernel.TimeSlot
	Lockers       []int
	Status        appointment.Status
	Previous      *SlotSnapshot
	OccurredAt    time.Time
}

// AppointmentStatusSink receives committed appointment changes. Sinks are
// projections and notifications; their failures never undo a transition.
type AppointmentStatusSink interface {
	Name() string
	Publish(ctx context.Context, change AppointmentChange) error
}
