package packing

import (
	"cmp"
	"fmt"
	"slices"

	"hako/internal/core/domain/model/kernel"
	"hako/internal/pkg/errs"
)

// Item is a packing request entry: Quantity identical units of the same size.
type Item struct {
	ID         string
	Dimensions kernel.Dimensions
	Quantity   int
}

// unitItem is one physical unit expanded from an Item.
type unitItem struct {
	itemID       string
	copy         int
	dimensions   kernel.Dimensions
	volume       float64
	orientations [6]Orientation
}

// Engine runs the greedy grid packing. The zero value packs without a locker cap.
type Engine struct {
	maxLockers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxLockers caps how many virtual lockers a single Pack call may open.
// Unit-items that would need one more locker are reported as failed.
// Zero or a negative n means no cap.
func WithMaxLockers(n int) Option {
	return func(e *Engine) {
		e.maxLockers = max(0, n)
	}
}

// NewEngine creates a packing engine.
func NewEngine(opts ...Option) Engine {
	e := Engine{}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Pack places every unit of items into as few lockers as the greedy first fit finds.
//
// Parameters:
//   - items: packing request; entries with Quantity <= 0 contribute nothing
//
// Returns:
//   - Result: lockers in creation order, rejected and failed unit-items, metrics
//   - error: ValueIsInvalidError when an item has no ID or unconstructed dimensions
//
// Example:
//
//	box, _ := kernel.NewDimensions(20, 10, 40)
//	res, err := packing.NewEngine().Pack([]packing.Item{{ID: "sku-1", Dimensions: box, Quantity: 3}})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Metrics.LockersUsed) // 1
func (e Engine) Pack(items []Item) (Result, error) {
	units, rejected, err := expand(items)
	if err != nil {
		return Result{}, err
	}

	slices.SortStableFunc(units, func(a, b unitItem) int {
		return cmp.Compare(b.volume, a.volume)
	})

	pc := newPackingContext(e.maxLockers)
	failed := make([]Unplaced, 0)
	for _, u := range units {
		if !pc.place(u) {
			failed = append(failed, Unplaced{
				ItemID:     u.itemID,
				Copy:       u.copy,
				Dimensions: u.dimensions,
				Reason:     "no free position in any available locker",
			})
		}
	}

	lockers := pc.layouts()
	return Result{
		Lockers:  lockers,
		Rejected: rejected,
		Failed:   failed,
		Metrics:  computeMetrics(lockers, len(rejected), len(failed)),
	}, nil
}

// expand turns items into unit-items and splits off the oversized ones.
func expand(items []Item) ([]unitItem, []Unplaced, error) {
	units := make([]unitItem, 0, len(items))
	rejected := make([]Unplaced, 0)

	for i, item := range items {
		if item.ID == "" {
			return nil, nil, errs.NewValueIsRequiredError(fmt.Sprintf("items[%d].id", i))
		}
		if err := item.Dimensions.Validate(); err != nil {
			return nil, nil, errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d].dimensions", i), err)
		}

		for c := range max(0, item.Quantity) {
			if item.Dimensions.Largest() > MaxExtent {
				rejected = append(rejected, Unplaced{
					ItemID:     item.ID,
					Copy:       c,
					Dimensions: item.Dimensions,
					Reason:     fmt.Sprintf("%s exceeds the %g maximum side of a locker", item.Dimensions, MaxExtent),
				})
				continue
			}

			units = append(units, unitItem{
				itemID:       item.ID,
				copy:         c,
				dimensions:   item.Dimensions,
				volume:       item.Dimensions.Volume(),
				orientations: orientationsOf(item.Dimensions),
			})
		}
	}

	return units, rejected, nil
}

// packingContext holds the lockers opened so far and the current locker pointer
// for one Pack call.
type packingContext struct {
	lockers    []*virtualLocker
	current    int
	maxLockers int
}

func newPackingContext(maxLockers int) *packingContext {
	return &packingContext{maxLockers: maxLockers}
}

func (pc *packingContext) open() (*virtualLocker, bool) {
	if pc.maxLockers > 0 && len(pc.lockers) >= pc.maxLockers {
		return nil, false
	}
	l := newVirtualLocker(len(pc.lockers))
	pc.lockers = append(pc.lockers, l)
	return l, true
}

func (pc *packingContext) place(u unitItem) bool {
	if len(pc.lockers) == 0 {
		if _, ok := pc.open(); !ok {
			return false
		}
		pc.current = 0
	}

	for i := pc.current; i < len(pc.lockers); i++ {
		l := pc.lockers[i]
		if l.full {
			continue
		}
		if pos, o, ok := l.findSpace(u.orientations); ok {
			pc.commit(l, u, pos, o)
			return true
		}
	}

	// Nothing open accepts it: retry once in a fresh locker.
	l, ok := pc.open()
	if !ok {
		return false
	}
	pos, o, ok := l.findSpace(u.orientations)
	if !ok {
		return false
	}
	pc.commit(l, u, pos, o)
	return true
}

func (pc *packingContext) commit(l *virtualLocker, u unitItem, pos Position, o Orientation) {
	l.occupy(Placement{
		ItemID:      u.itemID,
		Copy:        u.copy,
		Dimensions:  u.dimensions,
		Position:    pos,
		Orientation: o,
	})

	if !l.full {
		return
	}

	next, ok := pc.open()
	if ok && l.index == pc.current {
		pc.current = next.index
	}
}

// layouts snapshots the non-empty lockers. Only the newest locker can be empty.
func (pc *packingContext) layouts() []LockerLayout {
	out := make([]LockerLayout, 0, len(pc.lockers))
	for _, l := range pc.lockers {
		if l.used == 0 {
			continue
		}
		out = append(out, l.layout())
	}
	return out
}
