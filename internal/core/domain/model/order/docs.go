// Package order provides the Order aggregate as far as locker pickup is concerned.
//
// The package includes:
//   - Order: the aggregate root tracking payment status and per-line locker claims
//   - Line: one purchased product with its quantity, claimed count and locker
//   - Status: the order state machine
//
// Key business rules:
//   - Orders follow Pending -> Paid -> ReadyForPickup -> PickedUp
//   - Only Paid or ReadyForPickup orders accept locker claims
//   - Releasing the last claimed unit of a line clears its locker
package order
