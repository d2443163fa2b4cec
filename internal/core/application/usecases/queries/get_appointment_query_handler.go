package queries

import (
	"context"

	"hako/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetAppointmentQueryHandler struct {
	db *gorm.DB
}

func NewGetAppointmentQueryHandler(db *gorm.DB) GetAppointmentQueryHandler {
	return GetAppointmentQueryHandler{db: db}
}

func (h GetAppointmentQueryHandler) Handle(ctx context.Context, query GetAppointmentQuery) (AppointmentView, error) {
	if err := query.Validate(); err != nil {
		return AppointmentView{}, err
	}

	views, err := loadAppointmentViews(ctx, h.db, "id = ?", query.AppointmentID().Bytes())
	if err != nil {
		return AppointmentView{}, err
	}
	if len(views) == 0 {
		return AppointmentView{}, errs.NewObjectNotFoundError("appointmentId", query.AppointmentID())
	}

	view := views[0]
	if !query.Actor().CanAccess(view.UserID) {
		return AppointmentView{}, errs.NewAccessDeniedError("appointment", query.AppointmentID())
	}
	return view, nil
}
