// Package appointment provides the pickup Appointment aggregate and its state machine.
//
// An appointment reserves one or more lockers for one user during one hour slot
// of one day. Each PickupItem places one product unit in one locker.
//
// Key business rules:
//   - new appointments start Scheduled
//   - Scheduled may be Confirmed; both are active and occupy their lockers
//   - active appointments end Completed, Cancelled (by user or admin) or NoShow
//   - terminal appointments never change again, so a second cancel is rejected
//   - items and the slot can only change while the appointment is active
package appointment
