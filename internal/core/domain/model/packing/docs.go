// Package packing decides how product units fit into pickup lockers.
//
// A locker is a 3×3×3 grid of cubic slots with a 15 unit edge, so a locker holds
// 27 slots and nothing longer than 45 units along any axis. Every unit occupies
// an axis-aligned box of ceil(side/15) slots per axis.
//
// Engine.Pack is a deterministic greedy first fit:
//
//  1. items are expanded into one unit-item per quantity
//  2. unit-items with any side above 45 are rejected
//  3. the rest are stable sorted by descending volume
//  4. each unit-item tries the current locker and every later one, orientation by
//     orientation, scanning origins z, then y, then x, and takes the first free box
//  5. a locker that reaches 27 used slots is closed and a fresh one opened; a unit-item
//     no open locker accepts gets a fresh locker of its own
//  6. unit-items that still cannot be placed (only when the locker cap is hit) are failed
//
// The same input always produces the same Result. The engine keeps all state in a
// per-call packing context, so one Engine value can be shared between goroutines.
package packing
