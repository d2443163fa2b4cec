package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "hako/internal/adapters/out/postgres"
	"hako/internal/adapters/out/postgres/pgtest"
	"hako/internal/core/application/usecases/queries"
	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/pkg/clock"
	"hako/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var bogota = time.FixedZone("COT", -5*60*60)

type QueryHandlersTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	factory *postgres_adapter.GormUnitOfWorkFactory
	policy  services.ReservationPolicy
	clock   clock.Fixed

	date kernel.Date
	slot kernel.TimeSlot
}

func (suite *QueryHandlersTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(pg.DB, zap.NewNop())

	suite.policy, err = services.NewReservationPolicy(bogota, time.Hour, 7, time.Hour, 4)
	suite.Require().NoError(err)
	suite.clock = clock.Fixed(time.Date(2026, 10, 15, 8, 0, 0, 0, bogota))

	suite.date, err = kernel.NewDate(2026, time.October, 16)
	suite.Require().NoError(err)
	suite.slot, err = kernel.NewTimeSlot(10)
	suite.Require().NoError(err)
}

func (suite *QueryHandlersTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Terminate(context.Background()))
	}
}

func (suite *QueryHandlersTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
}

func (suite *QueryHandlersTestSuite) actor(userID kernel.UUID, role kernel.Role) kernel.Actor {
	a, err := kernel.NewActor(userID, role)
	suite.Require().NoError(err)
	return a
}

func (suite *QueryHandlersTestSuite) saveUnit(owner kernel.UUID, l, w, h float64) *unit.ProductUnit {
	box, err := kernel.NewDimensions(l, w, h)
	suite.Require().NoError(err)
	u, err := unit.NewProductUnit(kernel.NewUUID(), owner, kernel.NewUUID(), kernel.NewUUID(), "", box)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().ProductUnitRepository().Add(context.Background(), u))
	return u
}

func (suite *QueryHandlersTestSuite) saveAppointment(
	owner kernel.UUID,
	date kernel.Date,
	slot kernel.TimeSlot,
	lockers ...int,
) *appointment.Appointment {
	items := make([]appointment.PickupItem, 0, len(lockers))
	for _, l := range lockers {
		box, err := kernel.NewDimensions(10, 10, 10)
		suite.Require().NoError(err)
		it, err := appointment.NewPickupItem(kernel.NewUUID(), kernel.NewUUID(), l, &box)
		suite.Require().NoError(err)
		items = append(items, it)
	}
	a, err := appointment.NewAppointment(kernel.NewUUID(), owner, kernel.NewUUID(), date, slot, items, suite.clock.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().AppointmentRepository().Add(context.Background(), a))
	return a
}

func (suite *QueryHandlersTestSuite) TestCheckLockerAvailability_ReportsConflicts() {
	ctx := context.Background()
	first := suite.saveAppointment(kernel.NewUUID(), suite.date, suite.slot, 1, 2)
	suite.saveAppointment(kernel.NewUUID(), suite.date, suite.slot, 3)
	otherSlot, _ := kernel.NewTimeSlot(11)
	suite.saveAppointment(kernel.NewUUID(), suite.date, otherSlot, 4)

	handler := queries.NewCheckLockerAvailabilityQueryHandler(suite.pg.DB, suite.policy)

	query, err := queries.NewCheckLockerAvailabilityQuery(suite.date, suite.slot, []int{2, 4}, nil)
	suite.Require().NoError(err)
	got, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.False(got.Available)
	suite.Equal([]int{1, 2, 3}, got.OccupiedLockers)
	suite.Equal([]int{2}, got.ConflictingLockers)
	suite.Equal([]int{4}, got.FreeLockers)

	id := first.ID()
	query, err = queries.NewCheckLockerAvailabilityQuery(suite.date, suite.slot, []int{1, 2}, &id)
	suite.Require().NoError(err)
	got, err = handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.True(got.Available)
	suite.Equal([]int{3}, got.OccupiedLockers)
}

func (suite *QueryHandlersTestSuite) TestCheckLockerAvailability_IgnoresInactiveAppointments() {
	ctx := context.Background()
	a := suite.saveAppointment(kernel.NewUUID(), suite.date, suite.slot, 1)
	suite.Require().NoError(a.Cancel(suite.clock.Now(), kernel.RoleUser))
	suite.Require().NoError(suite.factory.Create().AppointmentRepository().Update(ctx, a))

	query, err := queries.NewCheckLockerAvailabilityQuery(suite.date, suite.slot, []int{1}, nil)
	suite.Require().NoError(err)
	got, err := queries.NewCheckLockerAvailabilityQueryHandler(suite.pg.DB, suite.policy).Handle(ctx, query)
	suite.Require().NoError(err)
	suite.True(got.Available)
	suite.Equal([]int{1, 2, 3, 4}, got.FreeLockers)
}

func (suite *QueryHandlersTestSuite) TestCheckLockerAvailability_LockerOutOfRange() {
	query, err := queries.NewCheckLockerAvailabilityQuery(suite.date, suite.slot, []int{5}, nil)
	suite.Require().NoError(err)

	_, err = queries.NewCheckLockerAvailabilityQueryHandler(suite.pg.DB, suite.policy).Handle(context.Background(), query)
	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange)
}

func (suite *QueryHandlersTestSuite) TestGetUserAppointments() {
	ctx := context.Background()
	owner := kernel.NewUUID()
	later, _ := kernel.NewTimeSlot(14)
	cancelled := suite.saveAppointment(owner, suite.date, later, 2)
	suite.Require().NoError(cancelled.Cancel(suite.clock.Now(), kernel.RoleAdmin))
	suite.Require().NoError(suite.factory.Create().AppointmentRepository().Update(ctx, cancelled))
	scheduled := suite.saveAppointment(owner, suite.date, suite.slot, 1, 3)
	suite.saveAppointment(kernel.NewUUID(), suite.date, suite.slot, 4)

	handler := queries.NewGetUserAppointmentsQueryHandler(suite.pg.DB)

	query, err := queries.NewGetUserAppointmentsQuery(suite.actor(owner, kernel.RoleUser), owner, nil)
	suite.Require().NoError(err)
	views, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Require().Len(views, 2)

	suite.Equal(scheduled.ID(), views[0].ID)
	suite.Equal(appointment.Scheduled, views[0].Status)
	suite.True(views[0].Date.IsEqual(suite.date))
	suite.True(views[0].TimeSlot.IsEqual(suite.slot))
	suite.Equal([]int{1, 3}, views[0].Lockers())
	suite.Require().Len(views[0].Items, 2)
	suite.Equal(1, views[0].Items[0].Quantity)
	suite.Require().NotNil(views[0].Items[0].Dimensions)

	suite.Equal(appointment.Cancelled, views[1].Status)
	suite.Require().NotNil(views[1].CancelledBy)
	suite.Equal(kernel.RoleAdmin, *views[1].CancelledBy)
	suite.NotNil(views[1].CancelledAt)

	query, err = queries.NewGetUserAppointmentsQuery(suite.actor(owner, kernel.RoleUser), owner,
		[]appointment.Status{appointment.Scheduled, appointment.Confirmed})
	suite.Require().NoError(err)
	views, err = handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Require().Len(views, 1)
	suite.Equal(scheduled.ID(), views[0].ID)
}

func (suite *QueryHandlersTestSuite) TestGetUserAppointments_Access() {
	ctx := context.Background()
	owner := kernel.NewUUID()
	suite.saveAppointment(owner, suite.date, suite.slot, 1)
	handler := queries.NewGetUserAppointmentsQueryHandler(suite.pg.DB)

	query, err := queries.NewGetUserAppointmentsQuery(suite.actor(kernel.NewUUID(), kernel.RoleUser), owner, nil)
	suite.Require().NoError(err)
	_, err = handler.Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrAccessDenied)

	query, err = queries.NewGetUserAppointmentsQuery(suite.actor(kernel.NewUUID(), kernel.RoleAdmin), owner, nil)
	suite.Require().NoError(err)
	views, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Len(views, 1)
}

func (suite *QueryHandlersTestSuite) TestGetAppointment() {
	ctx := context.Background()
	owner := kernel.NewUUID()
	a := suite.saveAppointment(owner, suite.date, suite.slot, 2)
	handler := queries.NewGetAppointmentQueryHandler(suite.pg.DB)

	query, err := queries.NewGetAppointmentQuery(suite.actor(owner, kernel.RoleUser), a.ID())
	suite.Require().NoError(err)
	view, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.Equal(a.ID(), view.ID)
	suite.Equal(a.OrderID(), view.OrderID)
	suite.Require().Len(view.Items, 1)
	suite.Equal(a.Items()[0].UnitID(), view.Items[0].UnitID)
	suite.Equal(2, view.Items[0].Locker)

	query, err = queries.NewGetAppointmentQuery(suite.actor(kernel.NewUUID(), kernel.RoleUser), a.ID())
	suite.Require().NoError(err)
	_, err = handler.Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrAccessDenied)

	query, err = queries.NewGetAppointmentQuery(suite.actor(owner, kernel.RoleUser), kernel.NewUUID())
	suite.Require().NoError(err)
	_, err = handler.Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueryHandlersTestSuite) TestPlanLockers_UsesFreeLockersOnly() {
	ctx := context.Background()
	owner := kernel.NewUUID()
	suite.saveAppointment(kernel.NewUUID(), suite.date, suite.slot, 1, 3)
	big := suite.saveUnit(owner, 45, 45, 45)
	small := suite.saveUnit(owner, 10, 10, 10)
	other := suite.saveUnit(owner, 12, 12, 12)

	handler := queries.NewPlanLockersQueryHandler(suite.pg.DB, suite.policy, suite.clock, zap.NewNop())
	query, err := queries.NewPlanLockersQuery(suite.actor(owner, kernel.RoleUser), suite.date, suite.slot,
		[]kernel.UUID{small.ID(), big.ID(), other.ID()})
	suite.Require().NoError(err)

	plan, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.True(plan.IsComplete())
	suite.Require().Len(plan.Lockers, 2)
	suite.Equal(2, plan.Lockers[0].Locker)
	suite.Equal(big.ID(), plan.Lockers[0].Units[0].UnitID)
	suite.Equal(4, plan.Lockers[1].Locker)
	suite.Len(plan.Lockers[1].Units, 2)
	suite.Equal(2, plan.Metrics.LockersUsed)
}

func (suite *QueryHandlersTestSuite) TestPlanLockers_FailsWhenFreeLockersRunOut() {
	ctx := context.Background()
	owner := kernel.NewUUID()
	suite.saveAppointment(kernel.NewUUID(), suite.date, suite.slot, 1, 2, 3)
	first := suite.saveUnit(owner, 45, 45, 45)
	second := suite.saveUnit(owner, 45, 45, 45)

	handler := queries.NewPlanLockersQueryHandler(suite.pg.DB, suite.policy, suite.clock, zap.NewNop())
	query, err := queries.NewPlanLockersQuery(suite.actor(owner, kernel.RoleUser), suite.date, suite.slot,
		[]kernel.UUID{first.ID(), second.ID()})
	suite.Require().NoError(err)

	plan, err := handler.Handle(ctx, query)
	suite.Require().NoError(err)
	suite.False(plan.IsComplete())
	suite.Require().Len(plan.Lockers, 1)
	suite.Equal(4, plan.Lockers[0].Locker)
	suite.Len(plan.Failed, 1)
}

func (suite *QueryHandlersTestSuite) TestPlanLockers_Errors() {
	ctx := context.Background()
	owner := kernel.NewUUID()
	u := suite.saveUnit(owner, 10, 10, 10)
	handler := queries.NewPlanLockersQueryHandler(suite.pg.DB, suite.policy, suite.clock, zap.NewNop())

	suite.Run("unknown unit", func() {
		query, err := queries.NewPlanLockersQuery(suite.actor(owner, kernel.RoleUser), suite.date, suite.slot,
			[]kernel.UUID{kernel.NewUUID()})
		suite.Require().NoError(err)
		_, err = handler.Handle(ctx, query)
		suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	})

	suite.Run("someone else's unit", func() {
		query, err := queries.NewPlanLockersQuery(suite.actor(kernel.NewUUID(), kernel.RoleUser), suite.date, suite.slot,
			[]kernel.UUID{u.ID()})
		suite.Require().NoError(err)
		_, err = handler.Handle(ctx, query)
		suite.Require().ErrorIs(err, errs.ErrAccessDenied)
	})

	suite.Run("slot inside the lead time", func() {
		early, _ := kernel.NewTimeSlot(8)
		today, _ := kernel.NewDate(2026, time.October, 15)
		query, err := queries.NewPlanLockersQuery(suite.actor(owner, kernel.RoleUser), today, early,
			[]kernel.UUID{u.ID()})
		suite.Require().NoError(err)
		_, err = handler.Handle(ctx, query)
		suite.Require().ErrorIs(err, errs.ErrRuleViolated)
	})

	suite.Run("every locker taken", func() {
		suite.saveAppointment(kernel.NewUUID(), suite.date, suite.slot, 1, 2, 3, 4)
		query, err := queries.NewPlanLockersQuery(suite.actor(owner, kernel.RoleUser), suite.date, suite.slot,
			[]kernel.UUID{u.ID()})
		suite.Require().NoError(err)
		_, err = handler.Handle(ctx, query)
		suite.Require().ErrorIs(err, errs.ErrRuleViolated)
		suite.Contains(err.Error(), "no_free_lockers")
	})
}

func TestQueryHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersTestSuite))
}
