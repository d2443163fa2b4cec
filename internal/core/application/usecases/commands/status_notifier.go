package commands

import (
	"context"
	"fmt"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/ports"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/metrics"

	"go.uber.org/zap"
)

// StatusNotifier is told about every committed appointment change.
type StatusNotifier interface {
	Notify(ctx context.Context, a *appointment.Appointment, previous *ports.SlotSnapshot)
}

// BestEffortNotifier fans a change out to sinks after commit. A failing or
// panicking sink is logged and counted; it never reaches the caller.
type BestEffortNotifier struct {
	sinks  []ports.AppointmentStatusSink
	clock  clock.Clock
	logger *zap.Logger
}

func NewBestEffortNotifier(logger *zap.Logger, clk clock.Clock, sinks ...ports.AppointmentStatusSink) BestEffortNotifier {
	return BestEffortNotifier{
		sinks:  sinks,
		clock:  clk,
		logger: logger,
	}
}

func (n BestEffortNotifier) Notify(ctx context.Context, a *appointment.Appointment, previous *ports.SlotSnapshot) {
	if a == nil {
		return
	}
	change := ChangeOf(a, previous)
	change.OccurredAt = n.clock.Now()

	for _, sink := range n.sinks {
		n.publish(ctx, sink, change)
	}
}

func (n BestEffortNotifier) publish(ctx context.Context, sink ports.AppointmentStatusSink, change ports.AppointmentChange) {
	defer func() {
		if r := recover(); r != nil {
			n.fail(sink, change, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := sink.Publish(ctx, change); err != nil {
		n.fail(sink, change, err)
	}
}

func (n BestEffortNotifier) fail(sink ports.AppointmentStatusSink, change ports.AppointmentChange, err error) {
	metrics.SinkFailuresTotal.WithLabelValues(sink.Name()).Inc()
	n.logger.Warn("appointment status publication failed",
		zap.String("sink", sink.Name()),
		zap.String("appointment_id", change.AppointmentID.String()),
		zap.String("status", change.Status.String()),
		zap.Error(err),
	)
}

// ChangeOf describes the current state of a. OccurredAt is left for the caller.
func ChangeOf(a *appointment.Appointment, previous *ports.SlotSnapshot) ports.AppointmentChange {
	return ports.AppointmentChange{
		AppointmentID: a.ID(),
		UserID:        a.UserID(),
		OrderID:       a.OrderID(),
		Date:          a.Date(),
		TimeSlot:      a.TimeSlot(),
		Lockers:       a.LockerNumbers(),
		Status:        a.Status(),
		Previous:      previous,
	}
}

func snapshotOf(a *appointment.Appointment) *ports.SlotSnapshot {
	return &ports.SlotSnapshot{
		Date:     a.Date(),
		TimeSlot: a.TimeSlot(),
		Lockers:  a.LockerNumbers(),
	}
}

func countTransition(a *appointment.Appointment) {
	metrics.AppointmentTransitionsTotal.WithLabelValues(a.Status().String()).Inc()
}
