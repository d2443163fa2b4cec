package penalty

import (
	"errors"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
	"hako/internal/pkg/guard"
)

// Lifetime is how long a penalty blocks bookings after it was recorded.
const Lifetime = 24 * time.Hour

var ErrPenaltyIsNotConstructed = errors.New("Penalty must be created via NewPenalty constructor")

// Penalty is recorded when a user misses an appointment. While active it
// blocks new bookings for the day of the missed appointment.
type Penalty struct {
	id        kernel.UUID
	userID    kernel.UUID
	date      kernel.Date
	createdAt time.Time

	guard guard.ConstructorGuard
}

func NewPenalty(id, userID kernel.UUID, date kernel.Date, createdAt time.Time) (*Penalty, error) {
	var errID, errUser, errDate, errCreated error
	if errID = id.Validate(); errID != nil {
		errID = errs.NewValueIsRequiredErrorWithCause("id", errID)
	}
	if errUser = userID.Validate(); errUser != nil {
		errUser = errs.NewValueIsRequiredErrorWithCause("userId", errUser)
	}
	if errDate = date.Validate(); errDate != nil {
		errDate = errs.NewValueIsRequiredErrorWithCause("date", errDate)
	}
	if createdAt.IsZero() {
		errCreated = errs.NewValueIsRequiredError("createdAt")
	}
	if err := errors.Join(errID, errUser, errDate, errCreated); err != nil {
		return nil, err
	}

	return &Penalty{
		id:        id,
		userID:    userID,
		date:      date,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (p *Penalty) Validate() error {
	if p == nil {
		return ErrPenaltyIsNotConstructed
	}
	return p.guard.Validate(ErrPenaltyIsNotConstructed)
}

func (p *Penalty) ID() kernel.UUID {
	return p.id
}

func (p *Penalty) UserID() kernel.UUID {
	return p.userID
}

func (p *Penalty) Date() kernel.Date {
	return p.date
}

func (p *Penalty) CreatedAt() time.Time {
	return p.createdAt
}

// ExpiresAt is the first instant the penalty no longer applies.
func (p *Penalty) ExpiresAt() time.Time {
	return p.createdAt.Add(Lifetime)
}

// IsActive reports whether now is within Lifetime of the record.
func (p *Penalty) IsActive(now time.Time) bool {
	return now.Before(p.ExpiresAt())
}

// Blocks reports whether the penalty forbids booking on date at now.
func (p *Penalty) Blocks(date kernel.Date, now time.Time) bool {
	return p.date.IsEqual(date) && p.IsActive(now)
}

// PurgeBefore returns the creation time at or before which penalties are inert.
func PurgeBefore(now time.Time) time.Time {
	return now.Add(-Lifetime)
}
