package packing

import (
	"math"

	"hako/internal/core/domain/model/kernel"
)

const (
	// SlotEdge is the side of one cubic slot.
	SlotEdge = 15.0

	// GridSize is the number of slots along each locker axis.
	GridSize = 3

	// SlotsPerLocker is the capacity of one locker.
	SlotsPerLocker = GridSize * GridSize * GridSize

	// MaxExtent is the longest side a unit may have and still fit a locker.
	MaxExtent = SlotEdge * GridSize
)

// Position is the slot coordinate of the lower corner of a placed box.
type Position struct {
	X int
	Y int
	Z int
}

// Orientation is the slot footprint of a placed box along x, y and z.
type Orientation struct {
	SX int
	SY int
	SZ int
}

// Slots is the number of slots the footprint covers.
func (o Orientation) Slots() int {
	return o.SX * o.SY * o.SZ
}

// slotsFor converts a raw side length into a slot count, never less than one.
func slotsFor(side float64) int {
	return max(1, int(math.Ceil(side/SlotEdge)))
}

// orientationsOf lists the six axis permutations of the unit's slot footprint
// in a fixed order: (x,y,z) (x,z,y) (y,x,z) (y,z,x) (z,x,y) (z,y,x).
func orientationsOf(d kernel.Dimensions) [6]Orientation {
	x, y, z := slotsFor(d.Length()), slotsFor(d.Width()), slotsFor(d.Height())
	return [6]Orientation{
		{SX: x, SY: y, SZ: z},
		{SX: x, SY: z, SZ: y},
		{SX: y, SY: x, SZ: z},
		{SX: y, SY: z, SZ: x},
		{SX: z, SY: x, SZ: y},
		{SX: z, SY: y, SZ: x},
	}
}

// virtualLocker is the mutable occupancy grid of one locker during a Pack call.
type virtualLocker struct {
	index      int
	cells      [GridSize][GridSize][GridSize]bool
	placements []Placement
	used       int
	full       bool
}

func newVirtualLocker(index int) *virtualLocker {
	return &virtualLocker{index: index}
}

// findSpace returns the first free box for the unit-item: orientations in order,
// then origins with z outermost and x innermost.
func (l *virtualLocker) findSpace(orientations [6]Orientation) (Position, Orientation, bool) {
	for _, o := range orientations {
		if o.SX > GridSize || o.SY > GridSize || o.SZ > GridSize {
			continue
		}
		for z := 0; z <= GridSize-o.SZ; z++ {
			for y := 0; y <= GridSize-o.SY; y++ {
				for x := 0; x <= GridSize-o.SX; x++ {
					p := Position{X: x, Y: y, Z: z}
					if l.isFree(p, o) {
						return p, o, true
					}
				}
			}
		}
	}
	return Position{}, Orientation{}, false
}

func (l *virtualLocker) isFree(p Position, o Orientation) bool {
	for z := p.Z; z < p.Z+o.SZ; z++ {
		for y := p.Y; y < p.Y+o.SY; y++ {
			for x := p.X; x < p.X+o.SX; x++ {
				if l.cells[x][y][z] {
					return false
				}
			}
		}
	}
	return true
}

func (l *virtualLocker) occupy(placement Placement) {
	p, o := placement.Position, placement.Orientation
	for z := p.Z; z < p.Z+o.SZ; z++ {
		for y := p.Y; y < p.Y+o.SY; y++ {
			for x := p.X; x < p.X+o.SX; x++ {
				l.cells[x][y][z] = true
			}
		}
	}
	l.placements = append(l.placements, placement)
	l.used += o.Slots()
	if l.used == SlotsPerLocker {
		l.full = true
	}
}

func (l *virtualLocker) layout() LockerLayout {
	placements := make([]Placement, len(l.placements))
	copy(placements, l.placements)
	return LockerLayout{
		Index:      l.index,
		Placements: placements,
		UsedSlots:  l.used,
		FreeSlots:  SlotsPerLocker - l.used,
	}
}
