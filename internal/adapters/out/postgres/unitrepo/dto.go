// Package unitrepo persists product units.
package unitrepo

import (
	"errors"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/unit"

	"github.com/google/uuid"
)

// ProductUnitDTO is the product_units row.
type ProductUnitDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID `gorm:"type:uuid;index"`
	OrderID      uuid.UUID `gorm:"type:uuid;index"`
	ProductID    uuid.UUID `gorm:"type:uuid"`
	Variant      string
	Length       float64
	Width        float64
	Height       float64
	Status       int
	LockerNumber *int
	ReservedAt   *time.Time
	PickedUpAt   *time.Time
}

func (ProductUnitDTO) TableName() string {
	return "product_units"
}

func fromDomain(u *unit.ProductUnit) ProductUnitDTO {
	d := u.Dimensions()
	return ProductUnitDTO{
		ID:           u.ID().Bytes(),
		OwnerID:      u.OwnerID().Bytes(),
		OrderID:      u.OrderID().Bytes(),
		ProductID:    u.ProductID().Bytes(),
		Variant:      u.Variant(),
		Length:       d.Length(),
		Width:        d.Width(),
		Height:       d.Height(),
		Status:       int(u.Status()),
		LockerNumber: u.Locker(),
		ReservedAt:   u.ReservedAt(),
		PickedUpAt:   u.PickedUpAt(),
	}
}

func toDomain(dto ProductUnitDTO) (*unit.ProductUnit, error) {
	id, errID := kernel.UUIDFromBytes(dto.ID[:])
	ownerID, errOwner := kernel.UUIDFromBytes(dto.OwnerID[:])
	orderID, errOrder := kernel.UUIDFromBytes(dto.OrderID[:])
	productID, errProduct := kernel.UUIDFromBytes(dto.ProductID[:])
	if err := errors.Join(errID, errOwner, errOrder, errProduct); err != nil {
		return nil, err
	}

	dims, err := kernel.NewDimensions(dto.Length, dto.Width, dto.Height)
	if err != nil {
		return nil, err
	}

	return unit.RestoreProductUnit(
		id, ownerID, orderID, productID,
		dto.Variant,
		dims,
		unit.Status(dto.Status),
		dto.LockerNumber,
		dto.ReservedAt,
		dto.PickedUpAt,
	)
}
