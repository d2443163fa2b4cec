package queries

import (
	"context"
	"database/sql"
	"time"

	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentView is the read model of an appointment with its items.
type AppointmentView struct {
	ID          kernel.UUID
	UserID      kernel.UUID
	OrderID     kernel.UUID
	Date        kernel.Date
	TimeSlot    kernel.TimeSlot
	Status      appointment.Status
	Items       []AppointmentItemView
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CancelledBy *kernel.Role
	NoShowAt    *time.Time
}

// AppointmentItemView is one unit of an appointment and its locker.
// Dimensions is nil when the booking carried no size.
type AppointmentItemView struct {
	UnitID     kernel.UUID
	ProductID  kernel.UUID
	Quantity   int
	Locker     int
	Dimensions *kernel.Dimensions
}

// Lockers returns the distinct lockers of the items in first-use order.
func (v AppointmentView) Lockers() []int {
	seen := make(map[int]struct{}, len(v.Items))
	lockers := make([]int, 0, len(v.Items))
	for _, it := range v.Items {
		if _, ok := seen[it.Locker]; ok {
			continue
		}
		seen[it.Locker] = struct{}{}
		lockers = append(lockers, it.Locker)
	}
	return lockers
}

// loadAppointmentViews reads the appointments matching where, ordered by
// schedule, and attaches their items.
func loadAppointmentViews(ctx context.Context, db *gorm.DB, where string, args ...any) ([]AppointmentView, error) {
	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			id,
			user_id,
			order_id,
			date,
			time_slot,
			status,
			created_at,
			confirmed_at,
			completed_at,
			cancelled_at,
			cancelled_by,
			no_show_at
		FROM appointments
		WHERE `+where+`
		ORDER BY date, time_slot, created_at, id
	`, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]AppointmentView, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var v AppointmentView
		var id, userID, orderID uuid.UUID
		var date time.Time
		var slot int16
		var status int16
		var cancelledBy sql.NullString

		err = rows.Scan(
			&id,
			&userID,
			&orderID,
			&date,
			&slot,
			&status,
			&v.CreatedAt,
			&v.ConfirmedAt,
			&v.CompletedAt,
			&v.CancelledAt,
			&cancelledBy,
			&v.NoShowAt,
		)
		if err != nil {
			return nil, err
		}

		if v.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if v.UserID, err = kernel.UUIDFromBytes(userID[:]); err != nil {
			return nil, err
		}
		if v.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		v.Date = kernel.DateOf(date, time.UTC)
		if v.TimeSlot, err = kernel.NewTimeSlot(int(slot)); err != nil {
			return nil, err
		}
		v.Status = appointment.Status(status)
		if err = v.Status.Validate(); err != nil {
			return nil, err
		}
		if cancelledBy.Valid {
			role, roleErr := kernel.ParseRole(cancelledBy.String)
			if roleErr != nil {
				return nil, roleErr
			}
			v.CancelledBy = &role
		}

		index[id] = len(views)
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(views) == 0 {
		return views, nil
	}
	if err = attachItems(ctx, db, views, index); err != nil {
		return nil, err
	}
	return views, nil
}

func attachItems(ctx context.Context, db *gorm.DB, views []AppointmentView, index map[uuid.UUID]int) error {
	ids := make([]uuid.UUID, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			appointment_id,
			unit_id,
			product_id,
			locker_number,
			length,
			width,
			height
		FROM appointment_items
		WHERE appointment_id IN ?
		ORDER BY appointment_id, position
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var appointmentID, unitID, productID uuid.UUID
		var length, width, height sql.NullFloat64
		item := AppointmentItemView{Quantity: 1}

		err = rows.Scan(&appointmentID, &unitID, &productID, &item.Locker, &length, &width, &height)
		if err != nil {
			return err
		}

		if item.UnitID, err = kernel.UUIDFromBytes(unitID[:]); err != nil {
			return err
		}
		if item.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return err
		}
		if length.Valid && width.Valid && height.Valid {
			box, dimErr := kernel.NewDimensions(length.Float64, width.Float64, height.Float64)
			if dimErr != nil {
				return dimErr
			}
			item.Dimensions = &box
		}

		i := index[appointmentID]
		views[i].Items = append(views[i].Items, item)
	}

	return rows.Err()
}
