// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order is stored as one orders row plus one order_lines row per product.
package orderrepo

import (
	"errors"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the orders row with its lines.
type OrderDTO struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index"`
	Status int
	PaidAt *time.Time
	Lines  []LineDTO `gorm:"foreignKey:OrderID;references:ID"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// LineDTO is one order_lines row. Position keeps the line order of the aggregate.
type LineDTO struct {
	OrderID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity     int
	Claimed      int
	LockerNumber *int
	Position     int
}

func (LineDTO) TableName() string {
	return "order_lines"
}

func fromDomain(o *order.Order) OrderDTO {
	lines := o.Lines()
	dto := OrderDTO{
		ID:     o.ID().Bytes(),
		UserID: o.UserID().Bytes(),
		Status: int(o.Status()),
		PaidAt: o.PaidAt(),
		Lines:  make([]LineDTO, 0, len(lines)),
	}

	for i, l := range lines {
		dto.Lines = append(dto.Lines, LineDTO{
			OrderID:      dto.ID,
			ProductID:    l.ProductID().Bytes(),
			Quantity:     l.Quantity(),
			Claimed:      l.Claimed(),
			LockerNumber: l.Locker(),
			Position:     i,
		})
	}
	return dto
}

// toDomain expects dto.Lines sorted by Position.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, errID := kernel.UUIDFromBytes(dto.ID[:])
	userID, errUser := kernel.UUIDFromBytes(dto.UserID[:])
	if err := errors.Join(errID, errUser); err != nil {
		return nil, err
	}

	lines := make([]order.Line, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		productID, err := kernel.UUIDFromBytes(l.ProductID[:])
		if err != nil {
			return nil, err
		}
		line, err := order.RestoreLine(productID, l.Quantity, l.Claimed, l.LockerNumber)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return order.RestoreOrder(id, userID, order.Status(dto.Status), lines, dto.PaidAt)
}
