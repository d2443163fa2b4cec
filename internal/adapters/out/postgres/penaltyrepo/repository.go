package penaltyrepo

import (
	"context"
	"time"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/penalty"

	"gorm.io/gorm"
)

// GormPenaltyRepository implements ports.PenaltyRepository using GORM.
type GormPenaltyRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormPenaltyRepository(db *gorm.DB, tracker aggregateTracker) *GormPenaltyRepository {
	return &GormPenaltyRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormPenaltyRepository) Add(ctx context.Context, p *penalty.Penalty) error {
	if err := p.Validate(); err != nil {
		return err
	}

	dto := fromDomain(p)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(p.ID(), p)
	return nil
}

func (r *GormPenaltyRepository) FindByUserAndDate(
	ctx context.Context,
	userID kernel.UUID,
	date kernel.Date,
	since time.Time,
) ([]*penalty.Penalty, error) {
	var dtos []PenaltyDTO
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND created_at > ?", userID.Bytes(), date.Time(), since).
		Order("created_at DESC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	out := make([]*penalty.Penalty, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *GormPenaltyRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at <= ?", cutoff).Delete(&PenaltyDTO{})
	return result.RowsAffected, result.Error
}
