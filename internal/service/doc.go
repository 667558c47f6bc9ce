// Package service implements business logic for the hopmap backend.
//
// StateService validates submitted load snapshots against the active
// topology, decides whether a snapshot is new or already active, persists
// applied states through the repository and publishes events on the EventBus
// so connected SSE clients see every change.
//
// The topology itself is swapped atomically when the config file is reloaded;
// applies are serialized so "already active" decisions never race.
package service
