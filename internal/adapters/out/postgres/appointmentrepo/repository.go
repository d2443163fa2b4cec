package appointmentrepo

import (
	"context"
	"errors"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/services"
	"hako/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	uniqueViolation = "23505"
	claimConstraint = "uq_locker_claims_slot_locker"
)

// GormAppointmentRepository implements ports.AppointmentRepository using GORM.
type GormAppointmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormAppointmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAppointmentRepository {
	return &GormAppointmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new appointment, its items and its locker claims. The writes run
// in a nested transaction so that a claim conflict leaves the caller's
// transaction usable.
func (r *GormAppointmentRepository) Add(ctx context.Context, a *appointment.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	dto := fromDomain(a)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dto).Error; err != nil {
			return err
		}
		return insertClaims(tx, claimsOf(a))
	})
	if err != nil {
		return r.translate(ctx, a, err)
	}

	r.tracker.TrackAggregate(a.ID(), a)
	return nil
}

// Update rewrites the appointment row, replaces its items and re-derives its
// claims from the current slot, lockers and status.
func (r *GormAppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	dto := fromDomain(a)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&AppointmentDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
			"date":         dto.Date,
			"time_slot":    dto.TimeSlot,
			"status":       dto.Status,
			"confirmed_at": dto.ConfirmedAt,
			"completed_at": dto.CompletedAt,
			"cancelled_at": dto.CancelledAt,
			"cancelled_by": dto.CancelledBy,
			"no_show_at":   dto.NoShowAt,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("appointment_id = ?", dto.ID).Delete(&ItemDTO{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&dto.Items).Error; err != nil {
			return err
		}

		if err := tx.Where("appointment_id = ?", dto.ID).Delete(&LockerClaimDTO{}).Error; err != nil {
			return err
		}
		return insertClaims(tx, claimsOf(a))
	})
	if err != nil {
		return r.translate(ctx, a, err)
	}

	r.tracker.TrackAggregate(a.ID(), a)
	return nil
}

func (r *GormAppointmentRepository) Get(ctx context.Context, id kernel.UUID) (*appointment.Appointment, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *GormAppointmentRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*appointment.Appointment, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormAppointmentRepository) get(db *gorm.DB, id kernel.UUID) (*appointment.Appointment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AppointmentDTO
	if err := db.Preload("Items", orderedItems).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("appointment", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormAppointmentRepository) FindActiveBySlot(
	ctx context.Context,
	date kernel.Date,
	slot kernel.TimeSlot,
) ([]*appointment.Appointment, error) {
	return r.findActive(ctx, "date = ? AND time_slot = ?", date.Time(), slot.Hour())
}

func (r *GormAppointmentRepository) FindActiveByUser(ctx context.Context, userID kernel.UUID) ([]*appointment.Appointment, error) {
	return r.findActive(ctx, "user_id = ?", userID.Bytes())
}

func (r *GormAppointmentRepository) FindActiveByOrder(ctx context.Context, orderID kernel.UUID) ([]*appointment.Appointment, error) {
	return r.findActive(ctx, "order_id = ?", orderID.Bytes())
}

func (r *GormAppointmentRepository) FindActiveOnOrBefore(ctx context.Context, date kernel.Date) ([]*appointment.Appointment, error) {
	return r.findActive(ctx, "date <= ?", date.Time())
}

func (r *GormAppointmentRepository) findActive(ctx context.Context, where string, args ...any) ([]*appointment.Appointment, error) {
	var dtos []AppointmentDTO
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where(where, args...).
		Where("status IN ?", activeStatuses()).
		Order("date, time_slot, created_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	out := make([]*appointment.Appointment, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// translate turns a unique violation on locker_claims into a
// *services.LockerConflictError naming the lockers held by other appointments.
func (r *GormAppointmentRepository) translate(ctx context.Context, a *appointment.Appointment, err error) error {
	if !isClaimConflict(err) {
		return err
	}

	lockers := a.LockerNumbers()
	var taken []int
	lookupErr := r.db.WithContext(ctx).
		Model(&LockerClaimDTO{}).
		Where("date = ? AND time_slot = ? AND appointment_id <> ?", a.Date().Time(), a.TimeSlot().Hour(), a.ID().Bytes()).
		Where("locker_number = ANY(?)", pq.Array(lockers)).
		Order("locker_number").
		Pluck("locker_number", &taken).Error
	if lookupErr != nil || len(taken) == 0 {
		taken = lockers
	}

	return services.NewLockerConflictError(a.Date(), a.TimeSlot(), taken)
}

func insertClaims(tx *gorm.DB, claims []LockerClaimDTO) error {
	if len(claims) == 0 {
		return nil
	}
	return tx.Create(&claims).Error
}

func orderedItems(tx *gorm.DB) *gorm.DB {
	return tx.Order("position")
}

func activeStatuses() []int {
	statuses := appointment.ActiveStatuses()
	out := make([]int, len(statuses))
	for i, s := range statuses {
		out[i] = int(s)
	}
	return out
}

func isClaimConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == claimConstraint
}
