package http

import (
	"time"

	"hako/internal/core/application/usecases/commands"
	"hako/internal/core/application/usecases/queries"
	"hako/internal/core/domain/model/kernel"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
	Lockers []int  `json:"lockers,omitempty"`
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PickupRequest struct {
	UnitID openapi_types.UUID `json:"unitId"`
	Locker int                `json:"locker"`
}

type PlanRequest struct {
	Date     openapi_types.Date   `json:"date"`
	TimeSlot string               `json:"timeSlot"`
	UnitIDs  []openapi_types.UUID `json:"unitIds"`
}

type NewAppointment struct {
	OrderID  openapi_types.UUID `json:"orderId"`
	Date     openapi_types.Date `json:"date"`
	TimeSlot string             `json:"timeSlot"`
	Items    []PickupRequest    `json:"items"`
}

type NewItems struct {
	Items []PickupRequest `json:"items"`
}

type AppointmentUpdate struct {
	Date        openapi_types.Date `json:"date"`
	TimeSlot    string             `json:"timeSlot"`
	Relocations []PickupRequest    `json:"relocations,omitempty"`
}

type PaidLine struct {
	ProductID         openapi_types.UUID `json:"productId"`
	Quantity          int                `json:"quantity"`
	Variant           string             `json:"variant,omitempty"`
	Dimensions        Dimensions         `json:"dimensions"`
	VariantDimensions *Dimensions        `json:"variantDimensions,omitempty"`
}

type PaidOrder struct {
	OrderID openapi_types.UUID `json:"orderId"`
	UserID  openapi_types.UUID `json:"userId"`
	Lines   []PaidLine         `json:"lines"`
}

type PurgeResult struct {
	Purged int64 `json:"purged"`
}

type AppointmentItem struct {
	UnitID     openapi_types.UUID `json:"unitId"`
	ProductID  openapi_types.UUID `json:"productId"`
	Quantity   int                `json:"quantity"`
	Locker     int                `json:"locker"`
	Dimensions *Dimensions        `json:"dimensions,omitempty"`
}

type Appointment struct {
	ID          openapi_types.UUID `json:"id"`
	UserID      openapi_types.UUID `json:"userId"`
	OrderID     openapi_types.UUID `json:"orderId"`
	Date        openapi_types.Date `json:"date"`
	TimeSlot    string             `json:"timeSlot"`
	Status      string             `json:"status"`
	Items       []AppointmentItem  `json:"items"`
	Lockers     []int              `json:"lockers"`
	CreatedAt   time.Time          `json:"createdAt"`
	ConfirmedAt *time.Time         `json:"confirmedAt,omitempty"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
	CancelledAt *time.Time         `json:"cancelledAt,omitempty"`
	CancelledBy *string            `json:"cancelledBy,omitempty"`
	NoShowAt    *time.Time         `json:"noShowAt,omitempty"`
}

type Availability struct {
	Date               openapi_types.Date `json:"date"`
	TimeSlot           string             `json:"timeSlot"`
	Available          bool               `json:"available"`
	OccupiedLockers    []int              `json:"occupiedLockers"`
	ConflictingLockers []int              `json:"conflictingLockers"`
	FreeLockers        []int              `json:"freeLockers"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type Orientation struct {
	SX int `json:"sx"`
	SY int `json:"sy"`
	SZ int `json:"sz"`
}

type PlannedUnit struct {
	UnitID      openapi_types.UUID `json:"unitId"`
	ProductID   openapi_types.UUID `json:"productId"`
	Dimensions  Dimensions         `json:"dimensions"`
	Position    Position           `json:"position"`
	Orientation Orientation        `json:"orientation"`
}

type PlannedLocker struct {
	Locker    int           `json:"locker"`
	Units     []PlannedUnit `json:"units"`
	UsedSlots int           `json:"usedSlots"`
	FreeSlots int           `json:"freeSlots"`
}

type UnplannedUnit struct {
	UnitID openapi_types.UUID `json:"unitId"`
	Reason string             `json:"reason"`
}

type PlanMetrics struct {
	LockersUsed   int     `json:"lockersUsed"`
	TotalSlots    int     `json:"totalSlots"`
	UsedSlots     int     `json:"usedSlots"`
	UnusedSlots   int     `json:"unusedSlots"`
	Efficiency    float64 `json:"efficiency"`
	Score         float64 `json:"score"`
	RejectedItems int     `json:"rejectedItems"`
	FailedItems   int     `json:"failedItems"`
}

type Plan struct {
	Date     openapi_types.Date `json:"date"`
	TimeSlot string             `json:"timeSlot"`
	Complete bool               `json:"complete"`
	Lockers  []PlannedLocker    `json:"lockers"`
	Rejected []UnplannedUnit    `json:"rejected"`
	Failed   []UnplannedUnit    `json:"failed"`
	Metrics  PlanMetrics        `json:"metrics"`
}

func dimensionsOf(d kernel.Dimensions) Dimensions {
	return Dimensions{Length: d.Length(), Width: d.Width(), Height: d.Height()}
}

func (d Dimensions) toKernel() (kernel.Dimensions, error) {
	return kernel.NewDimensions(d.Length, d.Width, d.Height)
}

func dateOf(d kernel.Date) openapi_types.Date {
	return openapi_types.Date{Time: d.Time()}
}

func toKernelDate(d openapi_types.Date) (kernel.Date, error) {
	t := d.Time
	return kernel.NewDate(t.Year(), t.Month(), t.Day())
}

func toKernelUUID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toPickupRequests(items []PickupRequest) ([]commands.PickupRequest, error) {
	out := make([]commands.PickupRequest, 0, len(items))
	for _, it := range items {
		id, err := toKernelUUID(it.UnitID)
		if err != nil {
			return nil, err
		}
		out = append(out, commands.PickupRequest{UnitID: id, Locker: it.Locker})
	}
	return out, nil
}

func toPaidLines(lines []PaidLine) ([]commands.PaidLine, error) {
	out := make([]commands.PaidLine, 0, len(lines))
	for _, l := range lines {
		productID, err := toKernelUUID(l.ProductID)
		if err != nil {
			return nil, err
		}
		dims, err := l.Dimensions.toKernel()
		if err != nil {
			return nil, err
		}
		line := commands.PaidLine{
			ProductID:  productID,
			Quantity:   l.Quantity,
			Variant:    l.Variant,
			Dimensions: dims,
		}
		if l.VariantDimensions != nil {
			variant, varErr := l.VariantDimensions.toKernel()
			if varErr != nil {
				return nil, varErr
			}
			line.VariantDimensions = &variant
		}
		out = append(out, line)
	}
	return out, nil
}

func appointmentOf(v queries.AppointmentView) Appointment {
	items := make([]AppointmentItem, len(v.Items))
	for i, it := range v.Items {
		items[i] = AppointmentItem{
			UnitID:    it.UnitID.Bytes(),
			ProductID: it.ProductID.Bytes(),
			Quantity:  it.Quantity,
			Locker:    it.Locker,
		}
		if it.Dimensions != nil {
			d := dimensionsOf(*it.Dimensions)
			items[i].Dimensions = &d
		}
	}

	out := Appointment{
		ID:          v.ID.Bytes(),
		UserID:      v.UserID.Bytes(),
		OrderID:     v.OrderID.Bytes(),
		Date:        dateOf(v.Date),
		TimeSlot:    v.TimeSlot.String(),
		Status:      v.Status.String(),
		Items:       items,
		Lockers:     v.Lockers(),
		CreatedAt:   v.CreatedAt,
		ConfirmedAt: v.ConfirmedAt,
		CompletedAt: v.CompletedAt,
		CancelledAt: v.CancelledAt,
		NoShowAt:    v.NoShowAt,
	}
	if v.CancelledBy != nil {
		by := string(*v.CancelledBy)
		out.CancelledBy = &by
	}
	return out
}

func availabilityOf(r queries.CheckLockerAvailabilityQueryResponse) Availability {
	return Availability{
		Date:               dateOf(r.Date),
		TimeSlot:           r.TimeSlot.String(),
		Available:          r.Available,
		OccupiedLockers:    r.OccupiedLockers,
		ConflictingLockers: r.ConflictingLockers,
		FreeLockers:        r.FreeLockers,
	}
}

func planOf(r queries.PlanLockersQueryResponse) Plan {
	lockers := make([]PlannedLocker, len(r.Lockers))
	for i, l := range r.Lockers {
		units := make([]PlannedUnit, len(l.Units))
		for j, u := range l.Units {
			units[j] = PlannedUnit{
				UnitID:      u.UnitID.Bytes(),
				ProductID:   u.ProductID.Bytes(),
				Dimensions:  dimensionsOf(u.Dimensions),
				Position:    Position{X: u.Position.X, Y: u.Position.Y, Z: u.Position.Z},
				Orientation: Orientation{SX: u.Orientation.SX, SY: u.Orientation.SY, SZ: u.Orientation.SZ},
			}
		}
		lockers[i] = PlannedLocker{Locker: l.Locker, Units: units, UsedSlots: l.UsedSlots, FreeSlots: l.FreeSlots}
	}

	return Plan{
		Date:     dateOf(r.Date),
		TimeSlot: r.TimeSlot.String(),
		Complete: r.IsComplete(),
		Lockers:  lockers,
		Rejected: unplannedOf(r.Rejected),
		Failed:   unplannedOf(r.Failed),
		Metrics: PlanMetrics{
			LockersUsed:   r.Metrics.LockersUsed,
			TotalSlots:    r.Metrics.TotalSlots,
			UsedSlots:     r.Metrics.UsedSlots,
			UnusedSlots:   r.Metrics.UnusedSlots,
			Efficiency:    r.Metrics.Efficiency,
			Score:         r.Metrics.Score,
			RejectedItems: r.Metrics.RejectedItems,
			FailedItems:   r.Metrics.FailedItems,
		},
	}
}

func unplannedOf(units []queries.UnplannedUnit) []UnplannedUnit {
	out := make([]UnplannedUnit, len(units))
	for i, u := range units {
		out[i] = UnplannedUnit{UnitID: u.UnitID.Bytes(), Reason: u.Reason}
	}
	return out
}
