// Package domain defines the core value types of the hopmap topology editor.
//
// # Core Types
//
// Node is one simulated host, identified by an explicit NodeID. Its position is
// expressed in normalized viewport coordinates and scaled at render time.
//
// EdgeKey names one link as an ordered pair of node ids ("A-B"). EdgeLoad is the
// two-valued load of that link: the forward value applies from the first node to
// the second, the reverse value the other way round.
//
// Snapshot maps edge keys to loads. It is the payload the sync client pushes and
// the state the backend applies.
//
// # Layout
//
// LinkDatum is the input to the force layout's link distance function. Each
// endpoint carries its weight explicitly, so the function never looks up
// attributes by name.
//
// # Routes
//
// Routes expands a Snapshot into directed per-pair entries. A route's hop count
// is its load plus two: traffic leaves the source switch, loops load times, then
// reaches the destination.
//
// # Design Principles
//
// - Immutable value objects
// - No database or external dependencies
package domain
