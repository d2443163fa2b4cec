// Package unit models the physical product units users pick up from lockers.
//
// A ProductUnit is created Available when its order is paid, becomes Reserved
// when it joins a pickup appointment, and ends PickedUp when that appointment
// completes. Cancelling or expiring the appointment makes it Available again.
package unit
