// Package plan implements the calendar layout and time engine behind the
// weekly Einsatzplan view.
//
// Everything in here is pure: deterministic transformations over plain
// inputs, no I/O, no shared state. Callers (store, HTTP layer) shape data
// on the way in and out; the engine only validates, buckets, lays out and
// measures.
//
// The accepted time-of-day window is 05:00-23:00. The window is a domain
// policy, not a parsing rule: the parser rejects values outside it and the
// vertical position mapper spans exactly the same range. Both read the same
// constants, so the two can never drift apart.
package plan
