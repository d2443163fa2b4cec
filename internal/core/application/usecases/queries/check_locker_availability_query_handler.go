package queries

import (
	"context"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckLockerAvailabilityQueryHandler reads the locker claims of a slot and
// runs the availability validator over them.
type CheckLockerAvailabilityQueryHandler struct {
	db        *gorm.DB
	policy    services.ReservationPolicy
	validator services.LockerAvailabilityValidator
}

func NewCheckLockerAvailabilityQueryHandler(
	db *gorm.DB,
	policy services.ReservationPolicy,
) CheckLockerAvailabilityQueryHandler {
	return CheckLockerAvailabilityQueryHandler{
		db:        db,
		policy:    policy,
		validator: services.NewLockerAvailabilityValidator(),
	}
}

// Handle returns which of the requested lockers are taken. Lockers outside
// 1..LockerCount are a validation error rather than a conflict.
func (h CheckLockerAvailabilityQueryHandler) Handle(
	ctx context.Context,
	query CheckLockerAvailabilityQuery,
) (CheckLockerAvailabilityQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return CheckLockerAvailabilityQueryResponse{}, err
	}
	if err := h.policy.ValidateLockers(query.Lockers()); err != nil {
		return CheckLockerAvailabilityQueryResponse{}, err
	}

	occupancies, err := slotOccupancies(ctx, h.db, query.Date(), query.TimeSlot())
	if err != nil {
		return CheckLockerAvailabilityQueryResponse{}, err
	}

	availability := h.validator.Check(services.AvailabilityRequest{
		Date:     query.Date(),
		TimeSlot: query.TimeSlot(),
		Lockers:  query.Lockers(),
		Exclude:  query.Exclude(),
	}, occupancies)

	return CheckLockerAvailabilityQueryResponse{
		Date:               query.Date(),
		TimeSlot:           query.TimeSlot(),
		Available:          availability.Available,
		OccupiedLockers:    availability.OccupiedLockers,
		ConflictingLockers: availability.ConflictingLockers,
		FreeLockers:        freeLockers(h.policy.LockerCount(), availability.OccupiedLockers),
	}, nil
}

// slotOccupancies groups the locker claims of a slot by appointment. Only
// active appointments hold claims.
func slotOccupancies(
	ctx context.Context,
	db *gorm.DB,
	date kernel.Date,
	slot kernel.TimeSlot,
) ([]services.Occupancy, error) {
	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			appointment_id,
			locker_number
		FROM locker_claims
		WHERE date = ? AND time_slot = ?
		ORDER BY appointment_id, locker_number
	`, date.Time(), slot.Hour()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupancies := make([]services.Occupancy, 0)
	for rows.Next() {
		var id uuid.UUID
		var locker int

		if err = rows.Scan(&id, &locker); err != nil {
			return nil, err
		}

		appointmentID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		last := len(occupancies) - 1
		if last >= 0 && occupancies[last].AppointmentID.IsEqual(appointmentID) {
			occupancies[last].Lockers = append(occupancies[last].Lockers, locker)
			continue
		}
		occupancies = append(occupancies, services.Occupancy{
			AppointmentID: appointmentID,
			Date:          date,
			TimeSlot:      slot,
			Lockers:       []int{locker},
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return occupancies, nil
}

// freeLockers lists 1..count minus the ascending occupied lockers.
func freeLockers(count int, occupied []int) []int {
	free := make([]int, 0, count)
	j := 0
	for l := 1; l <= count; l++ {
		for j < len(occupied) && occupied[j] < l {
			j++
		}
		if j < len(occupied) && occupied[j] == l {
			continue
		}
		free = append(free, l)
	}
	return free
}
