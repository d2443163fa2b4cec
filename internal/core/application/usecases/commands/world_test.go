package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/core/ports"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var bogota = time.FixedZone("COT", -5*60*60)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []ports.AppointmentChange
}

func (n *recordingNotifier) Notify(_ context.Context, a *appointment.Appointment, previous *ports.SlotSnapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, commands.ChangeOf(a, previous))
}

func (n *recordingNotifier) statuses() []appointment.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]appointment.Status, len(n.changes))
	for i, c := range n.changes {
		out[i] = c.Status
	}
	return out
}

// world is a booking system with an in-memory store, a Bogota policy and a
// clock set to 2026-10-15 08:00 local time.
type world struct {
	t        *testing.T
	store    *store
	clock    *fakeClock
	policy   services.ReservationPolicy
	notifier *recordingNotifier
	logger   *zap.Logger
	user     kernel.Actor
	admin    kernel.Actor
}

func newWorld(t *testing.T) *world {
	t.Helper()
	policy, err := services.NewReservationPolicy(bogota, time.Hour, 7, time.Hour, 12)
	require.NoError(t, err)
	user, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleUser)
	require.NoError(t, err)
	admin, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleAdmin)
	require.NoError(t, err)

	return &world{
		t:        t,
		store:    newStore(),
		clock:    &fakeClock{now: time.Date(2026, 10, 15, 8, 0, 0, 0, bogota)},
		policy:   policy,
		notifier: &recordingNotifier{},
		logger:   zaptest.NewLogger(t),
		user:     user,
		admin:    admin,
	}
}

func (w *world) actor(userID kernel.UUID) kernel.Actor {
	a, err := kernel.NewActor(userID, kernel.RoleUser)
	require.NoError(w.t, err)
	return a
}

func (w *world) date(day int) kernel.Date {
	d, err := kernel.NewDate(2026, time.October, day)
	require.NoError(w.t, err)
	return d
}

func (w *world) slot(hour int) kernel.TimeSlot {
	s, err := kernel.NewTimeSlot(hour)
	require.NoError(w.t, err)
	return s
}

// paidOrder stores a paid order of owner with one product line of n units.
func (w *world) paidOrder(owner kernel.UUID, n int) (kernel.UUID, kernel.UUID, []kernel.UUID) {
	w.t.Helper()
	productID := kernel.NewUUID()
	line, err := order.NewLine(productID, n)
	require.NoError(w.t, err)
	o, err := order.NewOrder(kernel.NewUUID(), owner, []order.Line{line})
	require.NoError(w.t, err)
	require.NoError(w.t, o.MarkPaid(w.clock.Now()))
	w.store.putOrder(o)

	box, err := kernel.NewDimensions(20, 20, 10)
	require.NoError(w.t, err)
	ids := make([]kernel.UUID, n)
	for i := range n {
		u, unitErr := unit.NewProductUnit(kernel.NewUUID(), owner, o.ID(), productID, "", box)
		require.NoError(w.t, unitErr)
		w.store.putUnit(u)
		ids[i] = u.ID()
	}
	return o.ID(), productID, ids
}

func (w *world) create(actor kernel.Actor, orderID kernel.UUID, day, hour int, items ...commands.PickupRequest) (kernel.UUID, error) {
	w.t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateAppointmentCommand(id, actor, orderID, w.date(day), w.slot(hour), items)
	require.NoError(w.t, err)
	h := commands.NewCreateAppointmentCommandHandler(w.store, w.policy, w.clock, w.notifier)
	return id, h.Handle(w.t.Context(), cmd)
}

// booked creates an appointment for a fresh order of the default user and
// fails the test when booking is rejected.
func (w *world) booked(day, hour int, lockers ...int) (kernel.UUID, kernel.UUID, []kernel.UUID) {
	w.t.Helper()
	orderID, _, unitIDs := w.paidOrder(w.user.UserID(), len(lockers))
	items := make([]commands.PickupRequest, len(lockers))
	for i, l := range lockers {
		items[i] = commands.PickupRequest{UnitID: unitIDs[i], Locker: l}
	}
	id, err := w.create(w.user, orderID, day, hour, items...)
	require.NoError(w.t, err)
	return id, orderID, unitIDs
}

func (w *world) cancel(actor kernel.Actor, id kernel.UUID) error {
	cmd, err := commands.NewCancelAppointmentCommand(id, actor)
	require.NoError(w.t, err)
	h := commands.NewCancelAppointmentCommandHandler(w.store, w.clock, w.notifier, w.logger)
	return h.Handle(w.t.Context(), cmd)
}

func (w *world) complete(actor kernel.Actor, id kernel.UUID) error {
	cmd, err := commands.NewCompleteAppointmentCommand(id, actor)
	require.NoError(w.t, err)
	h := commands.NewCompleteAppointmentCommandHandler(w.store, w.policy, w.clock, w.notifier, w.logger)
	return h.Handle(w.t.Context(), cmd)
}

func (w *world) confirm(actor kernel.Actor, id kernel.UUID) error {
	cmd, err := commands.NewConfirmAppointmentCommand(id, actor)
	require.NoError(w.t, err)
	h := commands.NewConfirmAppointmentCommandHandler(w.store, w.policy, w.clock, w.notifier)
	return h.Handle(w.t.Context(), cmd)
}

func (w *world) update(actor kernel.Actor, id kernel.UUID, day, hour int, relocations ...commands.PickupRequest) error {
	cmd, err := commands.NewUpdateAppointmentCommand(id, actor, w.date(day), w.slot(hour), relocations)
	require.NoError(w.t, err)
	h := commands.NewUpdateAppointmentCommandHandler(w.store, w.policy, w.clock, w.notifier, w.logger)
	return h.Handle(w.t.Context(), cmd)
}

func (w *world) addProducts(actor kernel.Actor, id kernel.UUID, items ...commands.PickupRequest) error {
	cmd, err := commands.NewAddProductsCommand(id, actor, items)
	require.NoError(w.t, err)
	h := commands.NewAddProductsCommandHandler(w.store, w.policy, w.clock, w.notifier)
	return h.Handle(w.t.Context(), cmd)
}

func (w *world) expire() (int, error) {
	h := commands.NewExpireAppointmentsCommandHandler(w.store, w.policy, w.clock, w.notifier, w.logger)
	return h.Handle(w.t.Context(), commands.NewExpireAppointmentsCommand())
}
