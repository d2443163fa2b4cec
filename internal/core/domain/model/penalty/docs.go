// Package penalty provides the no-show Penalty record.
//
// A penalty is written when an appointment lapses without pickup. For Lifetime
// after it is written it blocks new bookings by the same user on the same day.
// Expired penalties are inert and purged periodically.
package penalty
