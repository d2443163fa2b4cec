// Package services provides domain services that span several aggregates of
// the locker pickup system.
//
// The package includes:
//   - LockerAvailabilityValidator: decides whether lockers are free in a slot
//   - ReservationPolicy: booking window, lead time, slot length and locker range
//
// Both are pure: callers load the data and pass the current time explicitly.
package services
