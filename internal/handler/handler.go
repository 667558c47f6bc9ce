package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"hopmap/internal/domain"
	"hopmap/internal/repository"
	"hopmap/internal/service"
)

// DefaultHistoryLimit is the number of states returned when no limit is given
const DefaultHistoryLimit = 20

// maxSnapshotBytes bounds the size of a submitted snapshot
const maxSnapshotBytes = 1 << 20

// ErrorResponse is the body of every failed read request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SyncHandler handles snapshot submissions and state queries
type SyncHandler struct {
	svc *service.StateService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(svc *service.StateService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// Register adds every route to mux. The submission route uses the endpoint
// path of the topology active at registration time.
func (h *SyncHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST "+endpointPattern(h.svc.Topology().EndpointPath()), h.Apply)
	mux.HandleFunc("GET /api/topology", h.GetTopology)
	mux.HandleFunc("GET /api/state", h.GetState)
	mux.HandleFunc("GET /api/state/history", h.GetHistory)
	mux.HandleFunc("GET /api/state/history/{id}", h.GetHistoryEntry)
	mux.HandleFunc("GET /api/routes", h.GetRoutes)
	mux.HandleFunc("GET /healthz", h.Healthz)
}

// endpointPattern turns an endpoint path into a pattern matching only that
// path; a trailing slash would otherwise match the whole subtree
func endpointPattern(path string) string {
	if strings.HasSuffix(path, "/") {
		return path + "{$}"
	}
	return path
}

// Apply accepts a snapshot and makes it active
func (h *SyncHandler) Apply(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBytes)

	var snapshot domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		log.Printf("Rejected snapshot from %s: %v", getClientIP(r), err)
		writeJSON(w, service.Reply{Result: false, Status: service.StatusWrongConfiguration}, http.StatusUnprocessableEntity)
		return
	}

	res, err := h.svc.Apply(r.Context(), snapshot, getClientIP(r))
	if err != nil {
		if errors.Is(err, service.ErrWrongConfiguration) {
			log.Printf("Rejected snapshot from %s: %v", getClientIP(r), err)
			writeJSON(w, res.Reply, http.StatusUnprocessableEntity)
			return
		}
		log.Printf("Failed to apply snapshot: %v", err)
		writeError(w, "Failed to apply snapshot", err.Error(), http.StatusInternalServerError)
		return
	}

	if res.State != nil {
		log.Printf("Applied state %s from %s", res.State.ID, res.State.Source)
	}
	writeJSON(w, res.Reply, http.StatusOK)
}

// GetTopology returns the active topology as JSON, or YAML with ?format=yaml
func (h *SyncHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	contentType, err := h.svc.ExportTopology(r.URL.Query().Get("format"), &buf)
	if err != nil {
		writeError(w, "Failed to export topology", err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetState returns the active loads
func (h *SyncHandler) GetState(w http.ResponseWriter, r *http.Request) {
	current, err := h.svc.Current(r.Context())
	if err != nil {
		log.Printf("Failed to get state: %v", err)
		writeError(w, "Failed to get state", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, current, http.StatusOK)
}

// GetHistory returns applied states, newest first
func (h *SyncHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, "Invalid limit", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	states, total, err := h.svc.History(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to get history: %v", err)
		writeError(w, "Failed to get history", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, states, http.StatusOK)
}

// GetHistoryEntry returns one applied state by id
func (h *SyncHandler) GetHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	state, err := h.svc.State(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, "State not found", id, http.StatusNotFound)
			return
		}
		log.Printf("Failed to get state %s: %v", id, err)
		writeError(w, "Failed to get state", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, state, http.StatusOK)
}

// GetRoutes returns the directed per-pair view of the active loads
func (h *SyncHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.svc.Routes(r.Context())
	if err != nil {
		log.Printf("Failed to get routes: %v", err)
		writeError(w, "Failed to get routes", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, routes, http.StatusOK)
}

// Healthz reports whether the store is reachable
func (h *SyncHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		writeError(w, "Unhealthy", err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// getClientIP extracts the real client IP from the request
// Handles X-Forwarded-For and X-Real-IP headers from reverse proxies
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Helper functions

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
