package kafka

import (
	"time"

	"hako/internal/core/ports"
)

// StatusEvent is the JSON payload of the appointment-status topic.
type StatusEvent struct {
	AppointmentID string     `json:"appointmentId"`
	UserID        string     `json:"userId"`
	OrderID       string     `json:"orderId"`
	Date          string     `json:"date"`
	TimeSlot      string     `json:"timeSlot"`
	Lockers       []int      `json:"lockers"`
	Status        string     `json:"status"`
	Previous      *SlotEvent `json:"previous,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
}

// SlotEvent is the slot an appointment left.
type SlotEvent struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Lockers  []int  `json:"lockers"`
}

func NewStatusEvent(change ports.AppointmentChange) StatusEvent {
	event := StatusEvent{
		AppointmentID: change.AppointmentID.String(),
		UserID:        change.UserID.String(),
		OrderID:       change.OrderID.String(),
		Date:          change.Date.String(),
		TimeSlot:      change.TimeSlot.String(),
		Lockers:       change.Lockers,
		Status:        change.Status.String(),
		OccurredAt:    change.OccurredAt.UTC(),
	}
	if event.Lockers == nil {
		event.Lockers = []int{}
	}
	if change.Previous != nil {
		event.Previous = &SlotEvent{
			Date:     change.Previous.Date.String(),
			TimeSlot: change.Previous.TimeSlot.String(),
			Lockers:  change.Previous.Lockers,
		}
	}
	return event
}
