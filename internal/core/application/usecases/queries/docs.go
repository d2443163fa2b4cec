// Package queries contains read operations for retrieving system state.
// Queries bypass the aggregates and read the tables directly, returning read
// models shaped for the HTTP adapter.
package queries
