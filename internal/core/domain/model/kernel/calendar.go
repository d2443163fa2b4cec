package kernel

import (
	"fmt"
	"time"

	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

const (
	// DateLayout is the wire and storage format of a Date.
	DateLayout = "2006-01-02"

	// TimeSlotLayout is the wire and storage format of a TimeSlot.
	TimeSlotLayout = "15:04"
)

var (
	ErrDateIsNotConstructed     = errs.NewValueIsRequiredError("date must be created via NewDate, ParseDate or DateOf")
	ErrTimeSlotIsNotConstructed = errs.NewValueIsRequiredError("time slot must be created via NewTimeSlot or ParseTimeSlot")
)

// Date is a calendar day without a time of day or zone. Pickup appointments and
// penalties are keyed by Date; the zone used to derive "today" is configuration.
type Date struct { //nolint:recvcheck //using for validation
	t     time.Time
	guard guard.ConstructorGuard
}

// NewDate builds a Date and rejects impossible days such as February 30.
func NewDate(year int, month time.Month, day int) (Date, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, errs.NewValueIsInvalidErrorWithCause(
			"date", fmt.Errorf("%04d-%02d-%02d is not a calendar day", year, month, day))
	}
	return Date{t: t, guard: guard.NewConstructorGuard()}, nil
}

// ParseDate parses the "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errs.NewValueIsInvalidErrorWithCause("date", err)
	}
	return Date{t: t, guard: guard.NewConstructorGuard()}, nil
}

// DateOf returns the calendar day of instant t as seen in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	local := t.In(loc)
	return Date{
		t:     time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		guard: guard.NewConstructorGuard(),
	}
}

func (d Date) Validate() error {
	return d.guard.Validate(ErrDateIsNotConstructed)
}

// Time returns midnight UTC of the day, the representation stored in date columns.
func (d Date) Time() time.Time {
	return d.t
}

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n), guard: d.guard}
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) IsEqual(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// TimeSlot is an hour-granularity pickup window label such as "15:00".
type TimeSlot struct { //nolint:recvcheck //using for validation
	hour  int
	guard guard.ConstructorGuard
}

// NewTimeSlot builds the slot starting at hour (0..23).
func NewTimeSlot(hour int) (TimeSlot, error) {
	if hour < 0 || hour > 23 {
		return TimeSlot{}, errs.NewValueIsOutOfRangeError("timeSlot", hour, 0, 23)
	}
	return TimeSlot{hour: hour, guard: guard.NewConstructorGuard()}, nil
}

// ParseTimeSlot parses "HH:MM". Slots start on the hour, so minutes must be zero.
func ParseTimeSlot(s string) (TimeSlot, error) {
	t, err := time.Parse(TimeSlotLayout, s)
	if err != nil {
		return TimeSlot{}, errs.NewValueIsInvalidErrorWithCause("timeSlot", err)
	}
	if t.Minute() != 0 {
		return TimeSlot{}, errs.NewValueIsInvalidErrorWithCause(
			"timeSlot", fmt.Errorf("%s does not start on the hour", s))
	}
	return NewTimeSlot(t.Hour())
}

func (s TimeSlot) Validate() error {
	return s.guard.Validate(ErrTimeSlotIsNotConstructed)
}

func (s TimeSlot) Hour() int {
	return s.hour
}

// StartOn returns the instant the slot opens on day d in loc.
func (s TimeSlot) StartOn(d Date, loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), s.hour, 0, 0, 0, loc)
}

func (s TimeSlot) IsEqual(other TimeSlot) bool {
	return s.hour == other.hour
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%02d:00", s.hour)
}
