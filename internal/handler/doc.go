// Package handler implements the HTTP layer of the hopmap backend.
//
// SyncHandler accepts load snapshots on the topology's endpoint path and
// answers with a {result, status} reply. It also serves read-only views of
// the topology, the active state, its history and the derived routes.
//
// Middleware provides panic recovery, CORS and request logging.
//
// Errors from the read endpoints are returned as JSON with an {error, details}
// structure and an appropriate HTTP status code.
package handler
