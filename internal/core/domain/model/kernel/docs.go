// Package kernel holds the value objects shared by every aggregate:
//   - UUID: identifiers of users, orders, units, appointments and penalties
//   - Dimensions: the bounding box of a product unit
//   - Date and TimeSlot: the calendar day and hour label of a pickup window
//
// All of them are immutable, validated at construction and invalid as zero values.
package kernel
