// Package penaltyrepo persists no-show penalties.
package penaltyrepo

import (
	"errors"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/penalty"

	"github.com/google/uuid"
)

type PenaltyDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid"`
	Date      time.Time `gorm:"type:date"`
	CreatedAt time.Time
}

func (PenaltyDTO) TableName() string {
	return "penalties"
}

func fromDomain(p *penalty.Penalty) PenaltyDTO {
	return PenaltyDTO{
		ID:        p.ID().Bytes(),
		UserID:    p.UserID().Bytes(),
		Date:      p.Date().Time(),
		CreatedAt: p.CreatedAt(),
	}
}

func toDomain(dto PenaltyDTO) (*penalty.Penalty, error) {
	id, errID := kernel.UUIDFromBytes(dto.ID[:])
	userID, errUser := kernel.UUIDFromBytes(dto.UserID[:])
	if err := errors.Join(errID, errUser); err != nil {
		return nil, err
	}
	return penalty.NewPenalty(id, userID, kernel.DateOf(dto.Date, time.UTC), dto.CreatedAt)
}
