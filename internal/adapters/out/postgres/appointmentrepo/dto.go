// Package appointmentrepo persists appointments, their pickup items and the
// locker claims that keep a locker exclusive within a slot.
package appointmentrepo

import (
	"errors"
	"time"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AppointmentDTO is the appointments row with its items.
type AppointmentDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;index"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	Date        time.Time `gorm:"type:date"`
	TimeSlot    int       `gorm:"type:smallint"`
	Status      int       `gorm:"type:smallint"`
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CancelledBy *string
	NoShowAt    *time.Time
	Items       []ItemDTO `gorm:"foreignKey:AppointmentID;references:ID"`
}

func (AppointmentDTO) TableName() string {
	return "appointments"
}

// ItemDTO is one appointment_items row. Dimensions are nullable because the
// snapshot is optional.
type ItemDTO struct {
	AppointmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UnitID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID `gorm:"type:uuid"`
	LockerNumber  int
	Length        *float64
	Width         *float64
	Height        *float64
	Position      int
}

func (ItemDTO) TableName() string {
	return "appointment_items"
}

// LockerClaimDTO is one locker held by an active appointment.
type LockerClaimDTO struct {
	Date          time.Time `gorm:"type:date"`
	TimeSlot      int       `gorm:"type:smallint"`
	LockerNumber  int
	AppointmentID uuid.UUID `gorm:"type:uuid"`
}

func (LockerClaimDTO) TableName() string {
	return "locker_claims"
}

func fromDomain(a *appointment.Appointment) AppointmentDTO {
	var cancelledBy *string
	if by := a.CancelledBy(); by != nil {
		s := by.String()
		cancelledBy = &s
	}

	items := a.Items()
	dto := AppointmentDTO{
		ID:          a.ID().Bytes(),
		UserID:      a.UserID().Bytes(),
		OrderID:     a.OrderID().Bytes(),
		Date:        a.Date().Time(),
		TimeSlot:    a.TimeSlot().Hour(),
		Status:      int(a.Status()),
		CreatedAt:   a.CreatedAt(),
		ConfirmedAt: a.ConfirmedAt(),
		CompletedAt: a.CompletedAt(),
		CancelledAt: a.CancelledAt(),
		CancelledBy: cancelledBy,
		NoShowAt:    a.NoShowAt(),
		Items:       make([]ItemDTO, 0, len(items)),
	}

	for i, it := range items {
		item := ItemDTO{
			AppointmentID: dto.ID,
			UnitID:        it.UnitID().Bytes(),
			ProductID:     it.ProductID().Bytes(),
			LockerNumber:  it.Locker(),
			Position:      i,
		}
		if d := it.Dimensions(); d != nil {
			l, w, h := d.Length(), d.Width(), d.Height()
			item.Length, item.Width, item.Height = &l, &w, &h
		}
		dto.Items = append(dto.Items, item)
	}
	return dto
}

// claimsOf returns the claims an appointment must hold: one per locker while
// it is active, none once it is terminal.
func claimsOf(a *appointment.Appointment) []LockerClaimDTO {
	if !a.IsActive() {
		return nil
	}

	lockers := a.LockerNumbers()
	claims := make([]LockerClaimDTO, 0, len(lockers))
	for _, l := range lockers {
		claims = append(claims, LockerClaimDTO{
			Date:          a.Date().Time(),
			TimeSlot:      a.TimeSlot().Hour(),
			LockerNumber:  l,
			AppointmentID: a.ID().Bytes(),
		})
	}
	return claims
}

// toDomain expects dto.Items sorted by Position.
func toDomain(dto AppointmentDTO) (*appointment.Appointment, error) {
	id, errID := kernel.UUIDFromBytes(dto.ID[:])
	userID, errUser := kernel.UUIDFromBytes(dto.UserID[:])
	orderID, errOrder := kernel.UUIDFromBytes(dto.OrderID[:])
	slot, errSlot := kernel.NewTimeSlot(dto.TimeSlot)
	if err := errors.Join(errID, errUser, errOrder, errSlot); err != nil {
		return nil, err
	}

	items := make([]appointment.PickupItem, 0, len(dto.Items))
	for _, it := range dto.Items {
		item, err := itemToDomain(it)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	var cancelledBy *kernel.Role
	if dto.CancelledBy != nil {
		role, err := kernel.ParseRole(*dto.CancelledBy)
		if err != nil {
			return nil, err
		}
		cancelledBy = &role
	}

	return appointment.RestoreAppointment(
		id, userID, orderID,
		kernel.DateOf(dto.Date, time.UTC),
		slot,
		items,
		appointment.Status(dto.Status),
		dto.CreatedAt,
		dto.ConfirmedAt,
		dto.CompletedAt,
		dto.CancelledAt,
		cancelledBy,
		dto.NoShowAt,
	)
}

func itemToDomain(dto ItemDTO) (appointment.PickupItem, error) {
	unitID, errUnit := kernel.UUIDFromBytes(dto.UnitID[:])
	productID, errProduct := kernel.UUIDFromBytes(dto.ProductID[:])
	if err := errors.Join(errUnit, errProduct); err != nil {
		return appointment.PickupItem{}, err
	}

	var dims *kernel.Dimensions
	if dto.Length != nil && dto.Width != nil && dto.Height != nil {
		d, err := kernel.NewDimensions(*dto.Length, *dto.Width, *dto.Height)
		if err != nil {
			return appointment.PickupItem{}, err
		}
		dims = &d
	}

	return appointment.NewPickupItem(unitID, productID, dto.LockerNumber, dims)
}
