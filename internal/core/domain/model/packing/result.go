package packing

import "hako/internal/core/domain/model/kernel"

const (
	failedPenalty   = 5.0
	rejectedPenalty = 10.0
	densityBonus    = 20.0
	densityBonusMin = 80.0
)

// Placement is one unit-item placed in a locker. Copy distinguishes the unit-items
// expanded from the same Item (0 for the first).
type Placement struct {
	ItemID      string
	Copy        int
	Dimensions  kernel.Dimensions
	Position    Position
	Orientation Orientation
}

// Slots is the number of slots the placement covers.
func (p Placement) Slots() int {
	return p.Orientation.Slots()
}

// Unplaced is a unit-item the engine gave up on, with a human readable reason.
type Unplaced struct {
	ItemID     string
	Copy       int
	Dimensions kernel.Dimensions
	Reason     string
}

// LockerLayout is the final content of one virtual locker. Index is zero based
// and follows creation order.
type LockerLayout struct {
	Index      int
	Placements []Placement
	UsedSlots  int
	FreeSlots  int
}

// Metrics summarises how well a Pack call used its lockers.
//
// Efficiency is used/total slots as a percentage. Score starts from Efficiency,
// loses 5 points per failed and 10 per rejected unit-item, gains 20 when
// Efficiency is above 80 and is clamped to [0, 100].
type Metrics struct {
	LockersUsed   int
	TotalSlots    int
	UsedSlots     int
	UnusedSlots   int
	Efficiency    float64
	Score         float64
	RejectedItems int
	FailedItems   int
}

// Result is the outcome of Engine.Pack.
type Result struct {
	Lockers  []LockerLayout
	Rejected []Unplaced
	Failed   []Unplaced
	Metrics  Metrics
}

// IsComplete reports whether every unit-item got a slot.
func (r Result) IsComplete() bool {
	return len(r.Rejected) == 0 && len(r.Failed) == 0
}

func computeMetrics(lockers []LockerLayout, rejected, failed int) Metrics {
	m := Metrics{
		LockersUsed:   len(lockers),
		TotalSlots:    len(lockers) * SlotsPerLocker,
		RejectedItems: rejected,
		FailedItems:   failed,
	}
	for _, l := range lockers {
		m.UsedSlots += l.UsedSlots
	}
	m.UnusedSlots = m.TotalSlots - m.UsedSlots

	if m.TotalSlots > 0 {
		m.Efficiency = float64(m.UsedSlots) / float64(m.TotalSlots) * 100
	}

	score := m.Efficiency - failedPenalty*float64(failed) - rejectedPenalty*float64(rejected)
	if m.Efficiency > densityBonusMin {
		score += densityBonus
	}
	m.Score = min(100, max(0, score))

	return m
}
