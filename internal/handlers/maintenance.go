package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/models"
	"github.com/uydev/asset-tracker/internal/service"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaintenanceHandler exposes maintenance request/completion and the
// maintenance history.
type MaintenanceHandler struct {
	tracker     *service.MaintenanceTracker
	maintenance db.MaintenanceCollection
}

// NewMaintenanceHandler creates a maintenance handler.
func NewMaintenanceHandler(tracker *service.MaintenanceTracker, maintenance db.MaintenanceCollection) *MaintenanceHandler {
	return &MaintenanceHandler{tracker: tracker, maintenance: maintenance}
}

type maintenanceRequestBody struct {
	AssetID string `json:"asset_id"`
	service.MaintenanceRequestInput
}

type maintenanceUpdateBody struct {
	AssetID       string `json:"asset_id"`
	MaintenanceID string `json:"maintenance_id"`
	service.MaintenanceCompleteInput
}

// Request handles POST /maintenance-history/request.
func (h *MaintenanceHandler) Request(w http.ResponseWriter, r *http.Request) {
	var body maintenanceRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.AssetID == "" {
		respondError(w, http.StatusBadRequest, "asset_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	asset, err := h.tracker.Request(ctx, body.AssetID, body.MaintenanceRequestInput)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// Update handles POST /maintenance-history/update.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body maintenanceUpdateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.AssetID == "" || body.MaintenanceID == "" {
		respondError(w, http.StatusBadRequest, "asset_id and maintenance_id are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	asset, err := h.tracker.Complete(ctx, body.AssetID, body.MaintenanceID, body.MaintenanceCompleteInput)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// List handles GET /maintenance-history.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	filter := bson.M{}
	query := r.URL.Query()
	if assetID := query.Get("asset_id"); assetID != "" {
		filter["asset_id"] = assetID
	}
	if status := query.Get("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "maintenance_date", Value: -1}})
	records, err := h.maintenance.FindMaintenanceRecords(ctx, filter, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if records == nil {
		records = []models.MaintenanceRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}
