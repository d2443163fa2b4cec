// Package guard holds ConstructorGuard, a marker embedded in value objects,
// entities, commands and queries so that zero values can be told apart from
// instances built through their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the owning object went through its constructor.
//
// Example:
//
//	type Slot struct {
//	    hour  int
//	    guard guard.ConstructorGuard
//	}
//
//	func NewSlot(hour int) Slot {
//	    return Slot{hour: hour, guard: guard.NewConstructorGuard()}
//	}
//
//	func (s Slot) Validate() error {
//	    return s.guard.Validate(ErrSlotIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
