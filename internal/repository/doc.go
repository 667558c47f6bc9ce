// Package repository defines the data access interfaces for hopmap.
//
// The backend persists every applied configuration so the active state
// survives restarts and a history can be served. The implementation lives in
// the sqlite subpackage and stores each snapshot as a JSON document next to
// its id and application time.
package repository
