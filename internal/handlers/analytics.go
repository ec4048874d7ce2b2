package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/uydev/asset-tracker/internal/service"
)

// AnalyticsHandler exposes the read-only rollup endpoints.
type AnalyticsHandler struct {
	analytics *service.Analytics
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(analytics *service.Analytics) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Assets handles GET /analytics/assets.
func (h *AnalyticsHandler) Assets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	stats, err := h.analytics.AssetStats(ctx,
		r.URL.Query().Get("time_frame"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Departments handles GET /analytics/departments.
func (h *AnalyticsHandler) Departments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	stats, err := h.analytics.DepartmentStats(ctx,
		r.URL.Query().Get("time_frame"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Maintenance handles GET /analytics/maintenance.
func (h *AnalyticsHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	stats, err := h.analytics.MaintenanceStats(ctx,
		r.URL.Query().Get("time_frame"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Employees handles GET /analytics/employees.
func (h *AnalyticsHandler) Employees(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	query := r.URL.Query()
	stats, err := h.analytics.EmployeeStats(ctx,
		queryInt(r, "page", 1),
		queryInt(r, "limit", 10),
		query.Get("sort_by"),
		query.Get("sort_order"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
