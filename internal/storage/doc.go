// Package storage is the persistence layer: organizations, users,
// memberships, invites, sessions, password resets and the Einsätze
// themselves, all in one SQLite file.
//
// Rows use snake_case wire names; the engine's semantic shape
// (plan.Einsatz) is reconstructed on read. Timestamps are stored as
// fixed-width UTC RFC3339 strings so string order matches time order.
package storage
