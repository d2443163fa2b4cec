package commands_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/core/domain/model/appointment"
	"hako/internal/core/domain/model/kernel"
	"hako/internal/core/domain/model/order"
	"hako/internal/core/domain/model/penalty"
	"hako/internal/core/domain/model/unit"
	"hako/internal/core/domain/services"
	"hako/internal/core/ports"
	"hako/internal/pkg/errs"
)

var errNotStored = errors.New("record not found")

// state is one consistent snapshot of the in-memory database. Aggregates are
// stored as clones so that handlers never share pointers with the store.
type state struct {
	units        map[kernel.UUID]*unit.ProductUnit
	appointments map[kernel.UUID]*appointment.Appointment
	orders       map[kernel.UUID]*order.Order
	penalties    map[kernel.UUID]*penalty.Penalty
}

func (s state) copy() state {
	return state{
		units:        maps.Clone(s.units),
		appointments: maps.Clone(s.appointments),
		orders:       maps.Clone(s.orders),
		penalties:    maps.Clone(s.penalties),
	}
}

type store struct {
	mu      sync.Mutex
	data    state
	commits int
}

func newStore() *store {
	return &store{data: state{
		units:        map[kernel.UUID]*unit.ProductUnit{},
		appointments: map[kernel.UUID]*appointment.Appointment{},
		orders:       map[kernel.UUID]*order.Order{},
		penalties:    map[kernel.UUID]*penalty.Penalty{},
	}}
}

func (s *store) unit(id kernel.UUID) *unit.ProductUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.data.units[id]; ok {
		return cloneUnit(u)
	}
	return nil
}

func (s *store) appointment(id kernel.UUID) *appointment.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.data.appointments[id]; ok {
		return cloneAppointment(a)
	}
	return nil
}

func (s *store) order(id kernel.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.data.orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

func (s *store) penaltyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.penalties)
}

func (s *store) unitsOf(orderID kernel.UUID) []*unit.ProductUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*unit.ProductUnit
	for _, u := range s.data.units {
		if u.OrderID().IsEqual(orderID) {
			out = append(out, cloneUnit(u))
		}
	}
	return out
}

func (s *store) putUnit(u *unit.ProductUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.units[u.ID()] = cloneUnit(u)
}

func (s *store) deleteUnit(id kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.units, id)
}

func (s *store) putAppointment(a *appointment.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.appointments[a.ID()] = cloneAppointment(a)
}

func (s *store) putOrder(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.orders[o.ID()] = cloneOrder(o)
}

func (s *store) putPenalty(p *penalty.Penalty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.penalties[p.ID()] = p
}

func (s *store) Create() commands.UoW {
	return &fakeUoW{store: s}
}

// penaltyFactory and orderFactory expose the same store through the narrower
// unit of work interfaces.
type penaltyFactory struct{ *store }

func (f penaltyFactory) Create() commands.PenaltyUoW {
	return &fakeUoW{store: f.store}
}

type orderFactory struct{ *store }

func (f orderFactory) Create() commands.OrderUoW {
	return &fakeUoW{store: f.store}
}

type fakeUoW struct {
	store   *store
	working *state
}

func (u *fakeUoW) Begin(_ context.Context) error {
	if u.working != nil {
		return nil
	}
	u.store.mu.Lock()
	snapshot := u.store.data.copy()
	u.store.mu.Unlock()
	u.working = &snapshot
	return nil
}

func (u *fakeUoW) Commit(_ context.Context) error {
	if u.working == nil {
		return errors.New("no transaction")
	}
	u.store.mu.Lock()
	u.store.data = *u.working
	u.store.commits++
	u.store.mu.Unlock()
	u.working = nil
	return nil
}

func (u *fakeUoW) Rollback(_ context.Context) error {
	if u.working == nil {
		return errors.New("no transaction")
	}
	u.working = nil
	return nil
}

func (u *fakeUoW) ProductUnitRepository() ports.ProductUnitRepository {
	return fakeUnits{u.working}
}

func (u *fakeUoW) AppointmentRepository() ports.AppointmentRepository {
	return fakeAppointments{u.working}
}

func (u *fakeUoW) OrderRepository() ports.OrderRepository {
	return fakeOrders{u.working}
}

func (u *fakeUoW) PenaltyRepository() ports.PenaltyRepository {
	return fakePenalties{u.working}
}

type fakeUnits struct{ s *state }

func (r fakeUnits) Add(_ context.Context, u *unit.ProductUnit) error {
	r.s.units[u.ID()] = cloneUnit(u)
	return nil
}

func (r fakeUnits) Update(_ context.Context, u *unit.ProductUnit) error {
	if _, ok := r.s.units[u.ID()]; !ok {
		return errNotStored
	}
	r.s.units[u.ID()] = cloneUnit(u)
	return nil
}

func (r fakeUnits) Get(_ context.Context, id kernel.UUID) (*unit.ProductUnit, error) {
	u, ok := r.s.units[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("product unit", id.String())
	}
	return cloneUnit(u), nil
}

func (r fakeUnits) GetForUpdate(ctx context.Context, id kernel.UUID) (*unit.ProductUnit, error) {
	return r.Get(ctx, id)
}

func (r fakeUnits) FindFirstForUpdate(_ context.Context, f ports.UnitFilter) (*unit.ProductUnit, error) {
	ids := slices.SortedFunc(maps.Keys(r.s.units), func(a, b kernel.UUID) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	for _, id := range ids {
		u := r.s.units[id]
		if f.OwnerID.Validate() == nil && !u.OwnerID().IsEqual(f.OwnerID) {
			continue
		}
		if f.OrderID.Validate() == nil && !u.OrderID().IsEqual(f.OrderID) {
			continue
		}
		if f.ProductID.Validate() == nil && !u.ProductID().IsEqual(f.ProductID) {
			continue
		}
		if f.Status != unit.Unknown && u.Status() != f.Status {
			continue
		}
		if f.Locker != nil && (u.Locker() == nil || *u.Locker() != *f.Locker) {
			continue
		}
		return cloneUnit(u), nil
	}
	return nil, errs.NewObjectNotFoundError("product unit", "matching filter")
}

type fakeAppointments struct{ s *state }

func (r fakeAppointments) claim(a *appointment.Appointment) error {
	if !a.IsActive() {
		return nil
	}
	taken := make([]int, 0)
	for _, other := range r.s.appointments {
		if other.ID().IsEqual(a.ID()) || !other.IsActive() ||
			!other.Date().IsEqual(a.Date()) || !other.TimeSlot().IsEqual(a.TimeSlot()) {
			continue
		}
		for _, l := range other.LockerNumbers() {
			if slices.Contains(a.LockerNumbers(), l) {
				taken = append(taken, l)
			}
		}
	}
	if len(taken) > 0 {
		slices.Sort(taken)
		return services.NewLockerConflictError(a.Date(), a.TimeSlot(), taken)
	}
	return nil
}

func (r fakeAppointments) Add(_ context.Context, a *appointment.Appointment) error {
	if err := r.claim(a); err != nil {
		return err
	}
	r.s.appointments[a.ID()] = cloneAppointment(a)
	return nil
}

func (r fakeAppointments) Update(_ context.Context, a *appointment.Appointment) error {
	if _, ok := r.s.appointments[a.ID()]; !ok {
		return errNotStored
	}
	if err := r.claim(a); err != nil {
		return err
	}
	r.s.appointments[a.ID()] = cloneAppointment(a)
	return nil
}

func (r fakeAppointments) Get(_ context.Context, id kernel.UUID) (*appointment.Appointment, error) {
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("appointment", id.String())
	}
	return cloneAppointment(a), nil
}

func (r fakeAppointments) GetForUpdate(ctx context.Context, id kernel.UUID) (*appointment.Appointment, error) {
	return r.Get(ctx, id)
}

func (r fakeAppointments) find(match func(a *appointment.Appointment) bool) []*appointment.Appointment {
	out := make([]*appointment.Appointment, 0)
	for _, a := range r.s.appointments {
		if a.IsActive() && match(a) {
			out = append(out, cloneAppointment(a))
		}
	}
	slices.SortFunc(out, func(a, b *appointment.Appointment) int {
		return a.StartsAt(time.UTC).Compare(b.StartsAt(time.UTC))
	})
	return out
}

func (r fakeAppointments) FindActiveBySlot(_ context.Context, date kernel.Date, slot kernel.TimeSlot) ([]*appointment.Appointment, error) {
	return r.find(func(a *appointment.Appointment) bool {
		return a.Date().IsEqual(date) && a.TimeSlot().IsEqual(slot)
	}), nil
}

func (r fakeAppointments) FindActiveByUser(_ context.Context, userID kernel.UUID) ([]*appointment.Appointment, error) {
	return r.find(func(a *appointment.Appointment) bool { return a.IsOwnedBy(userID) }), nil
}

func (r fakeAppointments) FindActiveByOrder(_ context.Context, orderID kernel.UUID) ([]*appointment.Appointment, error) {
	return r.find(func(a *appointment.Appointment) bool { return a.OrderID().IsEqual(orderID) }), nil
}

func (r fakeAppointments) FindActiveOnOrBefore(_ context.Context, date kernel.Date) ([]*appointment.Appointment, error) {
	return r.find(func(a *appointment.Appointment) bool { return !a.Date().After(date) }), nil
}

type fakeOrders struct{ s *state }

func (r fakeOrders) Add(_ context.Context, o *order.Order) error {
	r.s.orders[o.ID()] = cloneOrder(o)
	return nil
}

func (r fakeOrders) Update(_ context.Context, o *order.Order) error {
	if _, ok := r.s.orders[o.ID()]; !ok {
		return errNotStored
	}
	r.s.orders[o.ID()] = cloneOrder(o)
	return nil
}

func (r fakeOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return cloneOrder(o), nil
}

func (r fakeOrders) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

type fakePenalties struct{ s *state }

func (r fakePenalties) Add(_ context.Context, p *penalty.Penalty) error {
	r.s.penalties[p.ID()] = p
	return nil
}

func (r fakePenalties) FindByUserAndDate(
	_ context.Context, userID kernel.UUID, date kernel.Date, since time.Time,
) ([]*penalty.Penalty, error) {
	out := make([]*penalty.Penalty, 0)
	for _, p := range r.s.penalties {
		if p.UserID().IsEqual(userID) && p.Date().IsEqual(date) && p.CreatedAt().After(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakePenalties) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, p := range r.s.penalties {
		if !p.CreatedAt().After(cutoff) {
			delete(r.s.penalties, id)
			n++
		}
	}
	return n, nil
}

func cloneUnit(u *unit.ProductUnit) *unit.ProductUnit {
	c, err := unit.RestoreProductUnit(u.ID(), u.OwnerID(), u.OrderID(), u.ProductID(), u.Variant(),
		u.Dimensions(), u.Status(), u.Locker(), u.ReservedAt(), u.PickedUpAt())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneAppointment(a *appointment.Appointment) *appointment.Appointment {
	c, err := appointment.RestoreAppointment(a.ID(), a.UserID(), a.OrderID(), a.Date(), a.TimeSlot(), a.Items(),
		a.Status(), a.CreatedAt(), a.ConfirmedAt(), a.CompletedAt(), a.CancelledAt(), a.CancelledBy(), a.NoShowAt())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneOrder(o *order.Order) *order.Order {
	lines := make([]order.Line, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		line, err := order.RestoreLine(l.ProductID(), l.Quantity(), l.Claimed(), l.Locker())
		if err != nil {
			panic(err)
		}
		lines = append(lines, line)
	}
	c, err := order.RestoreOrder(o.ID(), o.UserID(), o.Status(), lines, o.PaidAt())
	if err != nil {
		panic(err)
	}
	return c
}
