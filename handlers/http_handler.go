// Package handlers provides the HTTP request handlers of the inventory API.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/logging"
	"github.com/giygas/pharmacy-inventory-api/query"
	"github.com/go-chi/chi/v5"
)

const (
	maxPrescriptionItems = 100
	reloadTimeout        = 10 * time.Minute
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	query     interfaces.QueryService
	dataStore interfaces.DataStore
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
	reloader  interfaces.Reloader
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	queryService interfaces.QueryService,
	dataStore interfaces.DataStore,
	validator interfaces.DataValidator,
	healthChecker interfaces.HealthChecker,
	reloader interfaces.Reloader,
) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		query:     queryService,
		dataStore: dataStore,
		validator: validator,
		health:    healthChecker,
		reloader:  reloader,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	LastUpdate    any            `json:"last_update"`
	DataAgeHours  any            `json:"data_age_hours"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if lastUpdate := h.dataStore.GetLastUpdated(); !lastUpdate.IsZero() {
		w.Header().Set("Last-Modified", lastUpdate.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// respondWithQueryError maps a query service error to its status code
func (h *HTTPHandlerImpl) respondWithQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidInput):
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, query.ErrNotFound):
		h.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		logging.Error("Query failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// SearchMedicine returns the closest catalog names to ?query=
func (h *HTTPHandlerImpl) SearchMedicine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if strings.TrimSpace(q) == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing query parameter")
		return
	}

	if err := h.validator.ValidateInput(q); err != nil {
		logging.Warn("Unusual user input", "query", q, "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.query.FindBest(q)
	if err != nil {
		h.respondWithQueryError(w, err)
		return
	}

	if len(results) == 0 {
		h.RespondWithJSON(w, http.StatusOK, map[string]string{"message": query.NoMatchMessage})
		return
	}

	enriched := make([]entities.EnrichedRecord, len(results))
	for i := range results {
		enriched[i] = entities.EnrichMatch(results[i])
	}
	h.RespondWithJSON(w, http.StatusOK, enriched)
}

// ListMedicines serves the paginated management listing
func (h *HTTPHandlerImpl) ListMedicines(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	filter := entities.ListFilter{
		Search:    params.Get("search"),
		SortBy:    params.Get("sort_by"),
		SortOrder: params.Get("sort_order"),
	}

	if strings.TrimSpace(filter.Search) != "" {
		if err := h.validator.ValidateInput(filter.Search); err != nil {
			logging.Warn("Unusual user input", "search", filter.Search, "error", err)
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	for _, raw := range params["status_filter"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			tag, err := entities.ParseStatusTag(part)
			if err != nil {
				h.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			filter.StatusFilter = append(filter.StatusFilter, tag)
		}
	}

	var err error
	if filter.Page, err = positiveParam(params.Get("page")); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page: "+err.Error())
		return
	}
	if filter.PageSize, err = positiveParam(params.Get("page_size")); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page_size: "+err.Error())
		return
	}

	result, err := h.query.List(filter)
	if err != nil {
		h.respondWithQueryError(w, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, result)
}

// positiveParam parses an optional positive integer. Absent gives 0, which
// the service replaces with its default.
func positiveParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n, nil
}

// InventoryStats returns the catalog-wide stock and expiry counters
func (h *HTTPHandlerImpl) InventoryStats(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.query.Stats())
}

// Substitutes resolves the substitute names of one record to in-stock entries
func (h *HTTPHandlerImpl) Substitutes(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := h.validator.ValidateID(idStr)
	if err != nil {
		logging.Warn("Unusual user input", "id", idStr, "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.query.ResolveSubstitutes(id)
	if err != nil {
		h.respondWithQueryError(w, err)
		return
	}
	h.RespondWithJSON(w, http.StatusOK, resp)
}

// MatchPrescription matches each prescribed line against the catalog
func (h *HTTPHandlerImpl) MatchPrescription(w http.ResponseWriter, r *http.Request) {
	var req entities.PrescriptionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.RespondWithError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}

	if len(req.Medicines) == 0 {
		h.RespondWithError(w, http.StatusBadRequest, "No medicines in prescription")
		return
	}
	if len(req.Medicines) > maxPrescriptionItems {
		h.RespondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Too many medicines: at most %d per prescription", maxPrescriptionItems))
		return
	}

	h.RespondWithJSON(w, http.StatusOK, h.query.MatchPrescription(req.Medicines))
}

// TriggerReload starts an on-demand catalog reload in the background
func (h *HTTPHandlerImpl) TriggerReload(w http.ResponseWriter, r *http.Request) {
	if h.dataStore.IsUpdating() {
		h.RespondWithError(w, http.StatusConflict, "A reload is already in progress")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		if err := h.reloader.Reload(ctx); err != nil {
			logging.Warn("On-demand reload did not complete", "error", err)
		}
	}()

	logging.Info("On-demand reload requested", "remote_addr", r.RemoteAddr)
	h.RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Reload started"})
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.dataStore.GetServerStartTime())
	status, details, httpStatus := h.health.HealthCheck()

	response := HealthResponse{
		Status:        status,
		LastUpdate:    details["last_update"],
		DataAgeHours:  details["data_age_hours"],
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          details,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
