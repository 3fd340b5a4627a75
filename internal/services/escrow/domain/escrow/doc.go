// Package escrow holds the pure domain model for escrow agreements.
//
// The package has no I/O: state is always derived by folding the event
// history, transition legality is a static table over statuses, and role
// authorization is a pure function of the action and the agreement's fixed
// participants. All error surfaces live in the storage and service layers.
package escrow
