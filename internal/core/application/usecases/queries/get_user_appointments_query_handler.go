package queries

import (
	"context"

	"hako/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetUserAppointmentsQueryHandler struct {
	db *gorm.DB
}

func NewGetUserAppointmentsQueryHandler(db *gorm.DB) GetUserAppointmentsQueryHandler {
	return GetUserAppointmentsQueryHandler{db: db}
}

// Handle returns the user's appointments ordered by date and slot.
func (h GetUserAppointmentsQueryHandler) Handle(
	ctx context.Context,
	query GetUserAppointmentsQuery,
) ([]AppointmentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !query.Actor().CanAccess(query.UserID()) {
		return nil, errs.NewAccessDeniedError("appointments of user", query.UserID())
	}

	statuses := query.Statuses()
	if len(statuses) == 0 {
		return loadAppointmentViews(ctx, h.db, "user_id = ?", query.UserID().Bytes())
	}

	codes := make([]int, len(statuses))
	for i, s := range statuses {
		codes[i] = int(s)
	}
	return loadAppointmentViews(ctx, h.db, "user_id = ? AND status IN ?", query.UserID().Bytes(), codes)
}
