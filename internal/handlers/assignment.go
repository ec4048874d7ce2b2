package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/models"
	"github.com/uydev/asset-tracker/internal/service"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssignmentHandler exposes the assignment ledger and the assign/unassign
// operations.
type AssignmentHandler struct {
	coordinator *service.Coordinator
	assignments db.AssignmentCollection
}

// NewAssignmentHandler creates an assignment handler.
func NewAssignmentHandler(coordinator *service.Coordinator, assignments db.AssignmentCollection) *AssignmentHandler {
	return &AssignmentHandler{coordinator: coordinator, assignments: assignments}
}

type assignRequest struct {
	AssetID    string `json:"asset_id"`
	EmployeeID string `json:"employee_id"`
	models.AssignOptions
}

type unassignRequest struct {
	AssignmentID string `json:"assignment_id"`
	models.UnassignOptions
}

// Assign handles POST /assignment-history/assign.
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AssetID == "" || req.EmployeeID == "" {
		respondError(w, http.StatusBadRequest, "asset_id and employee_id are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	asset, err := h.coordinator.Assign(ctx, req.AssetID, req.EmployeeID, req.AssignOptions)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "assigned",
		"assignment_id": asset.CurrentAssignmentID,
		"asset_id":      asset.ID,
		"employee_id":   asset.CurrentAssigneeID,
		"timestamp":     asset.CurrentAssignmentDate,
	})
}

// Unassign handles POST /assignment-history/unassign.
func (h *AssignmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req unassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AssignmentID == "" {
		respondError(w, http.StatusBadRequest, "assignment_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	asset, err := h.coordinator.Unassign(ctx, req.AssignmentID, req.UnassignOptions)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	rec, err := h.assignments.FindAssignmentByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "assignment not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "returned",
		"assignment_id": rec.ID,
		"asset_id":      asset.ID,
		"employee_id":   rec.EmployeeID,
		"return_date":   rec.ReturnDate,
	})
}

// List handles GET /assignment-history.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	filter := bson.M{}
	query := r.URL.Query()
	if assetID := query.Get("asset_id"); assetID != "" {
		filter["asset_id"] = assetID
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter["employee_id"] = employeeID
	}
	if status := query.Get("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "assignment_date", Value: -1}})
	records, err := h.assignments.FindAssignments(ctx, filter, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if records == nil {
		records = []models.AssignmentRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// Get handles GET /assignment-history/{id}.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	rec, err := h.assignments.FindAssignmentByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "assignment not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
