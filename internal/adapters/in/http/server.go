package http

import (
	"context"
	"net/http"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/core/application/usecases/queries"
	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"
)

// Server adapts HTTP requests to the application use cases.
type Server struct {
	handlers Handlers
	logger   *zap.Logger
}

// NewServer creates a server over the given use cases.
func NewServer(handlers Handlers, logger *zap.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With(zap.String("component", "http")),
	}
}

// PlanLockers handles POST /api/v1/lockers/plan.
func (s *Server) PlanLockers(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}

	var body PlanRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	date, slot, err := schedule(body.Date, body.TimeSlot)
	if err != nil {
		return s.fail(ctx, "plan_lockers", err)
	}
	unitIDs := make([]kernel.UUID, 0, len(body.UnitIDs))
	for _, id := range body.UnitIDs {
		unitID, idErr := toKernelUUID(id)
		if idErr != nil {
			return s.fail(ctx, "plan_lockers", idErr)
		}
		unitIDs = append(unitIDs, unitID)
	}

	query, err := queries.NewPlanLockersQuery(actor, date, slot, unitIDs)
	if err != nil {
		return s.fail(ctx, "plan_lockers", err)
	}
	plan, err := s.handlers.PlanLockers.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, "plan_lockers", err)
	}

	return ctx.JSON(http.StatusOK, planOf(plan))
}

// CheckLockerAvailability handles GET /api/v1/lockers/availability.
func (s *Server) CheckLockerAvailability(ctx echo.Context) error {
	var (
		date     openapi_types.Date
		timeSlot string
		lockers  []int
		exclude  *openapi_types.UUID
	)
	params := ctx.QueryParams()
	if err := runtime.BindQueryParameter("form", true, true, "date", params, &date); err != nil {
		return badRequest(ctx, "Invalid format for parameter date: "+err.Error())
	}
	if err := runtime.BindQueryParameter("form", true, true, "timeSlot", params, &timeSlot); err != nil {
		return badRequest(ctx, "Invalid format for parameter timeSlot: "+err.Error())
	}
	if err := runtime.BindQueryParameter("form", false, true, "lockers", params, &lockers); err != nil {
		return badRequest(ctx, "Invalid format for parameter lockers: "+err.Error())
	}
	if err := runtime.BindQueryParameter("form", true, false, "exclude", params, &exclude); err != nil {
		return badRequest(ctx, "Invalid format for parameter exclude: "+err.Error())
	}

	day, slot, err := schedule(date, timeSlot)
	if err != nil {
		return s.fail(ctx, "check_locker_availability", err)
	}
	var excluded *kernel.UUID
	if exclude != nil {
		id, idErr := toKernelUUID(*exclude)
		if idErr != nil {
			return s.fail(ctx, "check_locker_availability", idErr)
		}
		excluded = &id
	}

	query, err := queries.NewCheckLockerAvailabilityQuery(day, slot, lockers, excluded)
	if err != nil {
		return s.fail(ctx, "check_locker_availability", err)
	}
	availability, err := s.handlers.CheckLockerAvailability.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, "check_locker_availability", err)
	}

	return ctx.JSON(http.StatusOK, availabilityOf(availability))
}

// GetUserAppointments handles GET /api/v1/appointments. Without userId the
// caller's own appointments are listed.
func (s *Server) GetUserAppointments(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}

	var (
		userParam *openapi_types.UUID
		statusRaw *[]string
	)
	params := ctx.QueryParams()
	if err := runtime.BindQueryParameter("form", true, false, "userId", params, &userParam); err != nil {
		return badRequest(ctx, "Invalid format for parameter userId: "+err.Error())
	}
	if err := runtime.BindQueryParameter("form", false, false, "status", params, &statusRaw); err != nil {
		return badRequest(ctx, "Invalid format for parameter status: "+err.Error())
	}

	userID := actor.UserID()
	if userParam != nil {
		id, err := toKernelUUID(*userParam)
		if err != nil {
			return s.fail(ctx, "get_user_appointments", err)
		}
		userID = id
	}

	var statuses []appointment.Status
	if statusRaw != nil {
		for _, raw := range *statusRaw {
			status, err := appointment.ParseStatus(raw)
			if err != nil {
				return s.fail(ctx, "get_user_appointments", err)
			}
			statuses = append(statuses, status)
		}
	}

	query, err := queries.NewGetUserAppointmentsQuery(actor, userID, statuses)
	if err != nil {
		return s.fail(ctx, "get_user_appointments", err)
	}
	views, err := s.handlers.GetUserAppointments.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, "get_user_appointments", err)
	}

	response := make([]Appointment, len(views))
	for i, v := range views {
		response[i] = appointmentOf(v)
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateAppointment handles POST /api/v1/appointments.
func (s *Server) CreateAppointment(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}

	var body NewAppointment
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := toKernelUUID(body.OrderID)
	if err != nil {
		return s.fail(ctx, "create_appointment", err)
	}
	date, slot, err := schedule(body.Date, body.TimeSlot)
	if err != nil {
		return s.fail(ctx, "create_appointment", err)
	}
	items, err := toPickupRequests(body.Items)
	if err != nil {
		return s.fail(ctx, "create_appointment", err)
	}

	id := kernel.NewUUID()
	cmd, err := commands.NewCreateAppointmentCommand(id, actor, orderID, date, slot, items)
	if err != nil {
		return s.fail(ctx, "create_appointment", err)
	}
	if err = s.handlers.CreateAppointment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, "create_appointment", err)
	}

	return s.respondWithAppointment(ctx, "create_appointment", http.StatusCreated, actor, id)
}

// GetAppointment handles GET /api/v1/appointments/{id}.
func (s *Server) GetAppointment(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}
	id, err := appointmentID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid format for parameter id: "+err.Error())
	}

	return s.respondWithAppointment(ctx, "get_appointment", http.StatusOK, actor, id)
}

// UpdateAppointment handles PATCH /api/v1/appointments/{id}.
func (s *Server) UpdateAppointment(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}
	id, err := appointmentID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid format for parameter id: "+err.Error())
	}

	var body AppointmentUpdate
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	date, slot, err := schedule(body.Date, body.TimeSlot)
	if err != nil {
		return s.fail(ctx, "update_appointment", err)
	}
	relocations, err := toPickupRequests(body.Relocations)
	if err != nil {
		return s.fail(ctx, "update_appointment", err)
	}

	cmd, err := commands.NewUpdateAppointmentCommand(id, actor, date, slot, relocations)
	if err != nil {
		return s.fail(ctx, "update_appointment", err)
	}
	if err = s.handlers.UpdateAppointment.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, "update_appointment", err)
	}

	return s.respondWithAppointment(ctx, "update_appointment", http.StatusOK, actor, id)
}

// AddProductsToAppointment handles POST /api/v1/appointments/{id}/items.
func (s *Server) AddProductsToAppointment(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}
	id, err := appointmentID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid format for parameter id: "+err.Error())
	}

	var body NewItems
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	items, err := toPickupRequests(body.Items)
	if err != nil {
		return s.fail(ctx, "add_products", err)
	}

	cmd, err := commands.NewAddProductsCommand(id, actor, items)
	if err != nil {
		return s.fail(ctx, "add_products", err)
	}
	if err = s.handlers.AddProducts.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, "add_products", err)
	}

	return s.respondWithAppointment(ctx, "add_products", http.StatusOK, actor, id)
}

// ConfirmAppointment handles POST /api/v1/appointments/{id}/confirm.
func (s *Server) ConfirmAppointment(ctx echo.Context) error {
	return s.transition(ctx, "confirm_appointment", func(c context.Context, id kernel.UUID, actor kernel.Actor) error {
		cmd, err := commands.NewConfirmAppointmentCommand(id, actor)
		if err != nil {
			return err
		}
		return s.handlers.ConfirmAppointment.Handle(c, cmd)
	})
}

// CancelAppointment handles POST /api/v1/appointments/{id}/cancel.
func (s *Server) CancelAppointment(ctx echo.Context) error {
	return s.transition(ctx, "cancel_appointment", func(c context.Context, id kernel.UUID, actor kernel.Actor) error {
		cmd, err := commands.NewCancelAppointmentCommand(id, actor)
		if err != nil {
			return err
		}
		return s.handlers.CancelAppointment.Handle(c, cmd)
	})
}

// CompleteAppointment handles POST /api/v1/appointments/{id}/complete.
func (s *Server) CompleteAppointment(ctx echo.Context) error {
	return s.transition(ctx, "complete_appointment", func(c context.Context, id kernel.UUID, actor kernel.Actor) error {
		cmd, err := commands.NewCompleteAppointmentCommand(id, actor)
		if err != nil {
			return err
		}
		return s.handlers.CompleteAppointment.Handle(c, cmd)
	})
}

// RegisterPaidOrder handles POST /api/v1/orders/paid.
func (s *Server) RegisterPaidOrder(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}

	var body PaidOrder
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := toKernelUUID(body.OrderID)
	if err != nil {
		return s.fail(ctx, "register_paid_order", err)
	}
	userID, err := toKernelUUID(body.UserID)
	if err != nil {
		return s.fail(ctx, "register_paid_order", err)
	}
	lines, err := toPaidLines(body.Lines)
	if err != nil {
		return s.fail(ctx, "register_paid_order", err)
	}

	cmd, err := commands.NewRegisterPaidOrderCommand(actor, orderID, userID, lines)
	if err != nil {
		return s.fail(ctx, "register_paid_order", err)
	}
	if err = s.handlers.RegisterPaidOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, "register_paid_order", err)
	}

	return ctx.NoContent(http.StatusCreated)
}

// PurgePenalties handles POST /api/v1/admin/penalties/purge.
func (s *Server) PurgePenalties(ctx echo.Context) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}
	if !actor.IsAdmin() {
		return s.fail(ctx, "purge_penalties", errs.NewAccessDeniedError("penalties", "purge"))
	}

	purged, err := s.handlers.PurgePenalties.Handle(ctx.Request().Context(), commands.NewPurgePenaltiesCommand())
	if err != nil {
		return s.fail(ctx, "purge_penalties", err)
	}

	return ctx.JSON(http.StatusOK, PurgeResult{Purged: purged})
}

type transitionFunc func(ctx context.Context, id kernel.UUID, actor kernel.Actor) error

func (s *Server) transition(ctx echo.Context, operation string, apply transitionFunc) error {
	actor, ok := actorFrom(ctx)
	if !ok {
		return unauthorized(ctx, "missing actor")
	}
	id, err := appointmentID(ctx)
	if err != nil {
		return badRequest(ctx, "Invalid format for parameter id: "+err.Error())
	}

	if err = apply(ctx.Request().Context(), id, actor); err != nil {
		return s.fail(ctx, operation, err)
	}

	return s.respondWithAppointment(ctx, operation, http.StatusOK, actor, id)
}

func (s *Server) respondWithAppointment(
	ctx echo.Context,
	operation string,
	status int,
	actor kernel.Actor,
	id kernel.UUID,
) error {
	query, err := queries.NewGetAppointmentQuery(actor, id)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	view, err := s.handlers.GetAppointment.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, operation, err)
	}
	return ctx.JSON(status, appointmentOf(view))
}

func appointmentID(ctx echo.Context) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, ctx.Param("id"), &id)
	if err != nil {
		return kernel.UUID{}, err
	}
	return toKernelUUID(id)
}

func schedule(date openapi_types.Date, timeSlot string) (kernel.Date, kernel.TimeSlot, error) {
	day, err := toKernelDate(date)
	if err != nil {
		return kernel.Date{}, kernel.TimeSlot{}, err
	}
	slot, err := kernel.ParseTimeSlot(timeSlot)
	if err != nil {
		return kernel.Date{}, kernel.TimeSlot{}, err
	}
	return day, slot, nil
}
