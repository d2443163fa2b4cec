package services

import (
	"fmt"
	"time"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultLeadTime     = 60 * time.Minute
	DefaultHorizonDays  = 7
	DefaultSlotDuration = time.Hour
	DefaultLockerCount  = 12
)

// ReservationPolicy holds the time and capacity rules every booking entry
// point applies: the booking window, the lead time, the slot length and the
// physical locker range. "Today" is always taken in the configured zone.
type ReservationPolicy struct {
	loc          *time.Location
	leadTime     time.Duration
	horizonDays  int
	slotDuration time.Duration
	lockerCount  int
}

// NewReservationPolicy validates the settings; a nil loc means UTC.
func NewReservationPolicy(
	loc *time.Location,
	leadTime time.Duration,
	horizonDays int,
	slotDuration time.Duration,
	lockerCount int,
) (ReservationPolicy, error) {
	if loc == nil {
		loc = time.UTC
	}
	if leadTime < 0 {
		return ReservationPolicy{}, errs.NewValueIsOutOfRangeError("leadTime", leadTime, 0, "unbounded")
	}
	if horizonDays < 0 {
		return ReservationPolicy{}, errs.NewValueIsOutOfRangeError("horizonDays", horizonDays, 0, "unbounded")
	}
	if slotDuration <= 0 {
		return ReservationPolicy{}, errs.NewValueIsOutOfRangeError("slotDuration", slotDuration, "1ns", "unbounded")
	}
	if lockerCount < 1 {
		return ReservationPolicy{}, errs.NewValueIsOutOfRangeError("lockerCount", lockerCount, 1, "unbounded")
	}

	return ReservationPolicy{
		loc:          loc,
		leadTime:     leadTime,
		horizonDays:  horizonDays,
		slotDuration: slotDuration,
		lockerCount:  lockerCount,
	}, nil
}

// DefaultReservationPolicy is the policy with every default, in UTC.
func DefaultReservationPolicy() ReservationPolicy {
	return ReservationPolicy{
		loc:          time.UTC,
		leadTime:     DefaultLeadTime,
		horizonDays:  DefaultHorizonDays,
		slotDuration: DefaultSlotDuration,
		lockerCount:  DefaultLockerCount,
	}
}

func (p ReservationPolicy) Location() *time.Location {
	return p.loc
}

func (p ReservationPolicy) LeadTime() time.Duration {
	return p.leadTime
}

func (p ReservationPolicy) SlotDuration() time.Duration {
	return p.slotDuration
}

func (p ReservationPolicy) LockerCount() int {
	return p.lockerCount
}

// Today is the calendar day of now in the configured zone.
func (p ReservationPolicy) Today(now time.Time) kernel.Date {
	return kernel.DateOf(now, p.loc)
}

// ValidateBookingWindow accepts dates from today through today+horizon.
func (p ReservationPolicy) ValidateBookingWindow(date kernel.Date, now time.Time) error {
	today := p.Today(now)
	last := today.AddDays(p.horizonDays)
	if date.Before(today) || date.After(last) {
		return errs.NewRuleViolatedErrorWithCause(
			"booking_window",
			fmt.Errorf("%s is outside %s..%s", date, today, last),
		)
	}
	return nil
}

// ValidateLeadTime requires the slot to start at least LeadTime after now.
func (p ReservationPolicy) ValidateLeadTime(date kernel.Date, slot kernel.TimeSlot, now time.Time) error {
	start := slot.StartOn(date, p.loc)
	if start.Before(now.Add(p.leadTime)) {
		return errs.NewRuleViolatedErrorWithCause(
			"lead_time",
			fmt.Errorf("slot %s %s starts in %s, at least %s is required",
				date, slot, start.Sub(now).Round(time.Minute), p.leadTime),
		)
	}
	return nil
}

// ValidateSchedule applies the booking window and the lead time.
func (p ReservationPolicy) ValidateSchedule(date kernel.Date, slot kernel.TimeSlot, now time.Time) error {
	if err := p.ValidateBookingWindow(date, now); err != nil {
		return err
	}
	return p.ValidateLeadTime(date, slot, now)
}

// ValidateLockers requires every locker number to lie in 1..LockerCount.
func (p ReservationPolicy) ValidateLockers(lockers []int) error {
	if len(lockers) == 0 {
		return errs.NewValueIsRequiredError("lockers")
	}
	for _, l := range lockers {
		if l < 1 || l > p.lockerCount {
			return errs.NewValueIsOutOfRangeError("locker", l, 1, p.lockerCount)
		}
	}
	return nil
}

// IsLapsed reports whether an active appointment's slot is over.
func (p ReservationPolicy) IsLapsed(a *appointment.Appointment, now time.Time) bool {
	return a.HasLapsed(now, p.loc, p.slotDuration)
}

// IsBeforeToday reports whether the appointment day is already in the past.
func (p ReservationPolicy) IsBeforeToday(a *appointment.Appointment, now time.Time) bool {
	return a.Date().Before(p.Today(now))
}
