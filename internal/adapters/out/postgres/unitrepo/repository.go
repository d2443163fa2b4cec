package unitrepo

import (
	"context"
	"errors"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/ports"
	"hako/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductUnitRepository implements ports.ProductUnitRepository using GORM.
type GormProductUnitRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormProductUnitRepository(db *gorm.DB, tracker aggregateTracker) *GormProductUnitRepository {
	return &GormProductUnitRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormProductUnitRepository) Add(ctx context.Context, u *unit.ProductUnit) error {
	if err := u.Validate(); err != nil {
		return err
	}

	dto := fromDomain(u)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(u.ID(), u)
	return nil
}

// Update writes every column so that a cleared locker is stored as NULL.
func (r *GormProductUnitRepository) Update(ctx context.Context, u *unit.ProductUnit) error {
	if err := u.Validate(); err != nil {
		return err
	}

	dto := fromDomain(u)
	result := r.db.WithContext(ctx).Model(&ProductUnitDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(u.ID(), u)
	return nil
}

func (r *GormProductUnitRepository) Get(ctx context.Context, id kernel.UUID) (*unit.ProductUnit, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormProductUnitRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*unit.ProductUnit, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormProductUnitRepository) get(db *gorm.DB, id kernel.UUID) (*unit.ProductUnit, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProductUnitDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("product unit", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindFirstForUpdate locks the oldest matching unit. SKIP LOCKED is not used:
// a unit held by a concurrent transaction is waited for, not passed over.
func (r *GormProductUnitRepository) FindFirstForUpdate(ctx context.Context, filter ports.UnitFilter) (*unit.ProductUnit, error) {
	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	if filter.OwnerID.Validate() == nil {
		query = query.Where("owner_id = ?", filter.OwnerID.Bytes())
	}
	if filter.OrderID.Validate() == nil {
		query = query.Where("order_id = ?", filter.OrderID.Bytes())
	}
	if filter.ProductID.Validate() == nil {
		query = query.Where("product_id = ?", filter.ProductID.Bytes())
	}
	if filter.Status != unit.Unknown {
		query = query.Where("status = ?", int(filter.Status))
	}
	if filter.Locker != nil {
		query = query.Where("locker_number = ?", *filter.Locker)
	}

	var dto ProductUnitDTO
	if err := query.Order("created_at, id").Take(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("product unit", "matching filter")
		}
		return nil, err
	}

	return toDomain(dto)
}
