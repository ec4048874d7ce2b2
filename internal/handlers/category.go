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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryHandler exposes category CRUD.
type CategoryHandler struct {
	categories db.CategoryCollection
	assets     db.AssetCollection
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(categories db.CategoryCollection, assets db.AssetCollection) *CategoryHandler {
	return &CategoryHandler{categories: categories, assets: assets}
}

type createCategoryBody struct {
	Name                     string `json:"name"`
	Description              string `json:"description,omitempty"`
	AllowMultipleAssignments bool   `json:"allow_multiple_assignments"`
	RequiresMaintenance      bool   `json:"requires_maintenance"`
	MaintenanceFrequency     string `json:"maintenance_frequency,omitempty"`
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createCategoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := models.Category{
		ID:                       models.NewCategoryID(),
		Name:                     body.Name,
		Description:              body.Description,
		AllowMultipleAssignments: body.AllowMultipleAssignments,
		RequiresMaintenance:      body.RequiresMaintenance,
		MaintenanceFrequency:     body.MaintenanceFrequency,
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	if err := h.categories.InsertCategory(ctx, category); err != nil {
		respondServiceError(w, err)
		return
	}
	created, err := h.categories.FindCategoryByID(ctx, category.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	categories, err := h.categories.FindCategories(ctx, bson.M{}, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	category, err := h.categories.FindCategoryByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

type updateCategoryBody struct {
	Name                     *string `json:"name,omitempty"`
	Description              *string `json:"description,omitempty"`
	AllowMultipleAssignments *bool   `json:"allow_multiple_assignments,omitempty"`
	RequiresMaintenance      *bool   `json:"requires_maintenance,omitempty"`
	MaintenanceFrequency     *string `json:"maintenance_frequency,omitempty"`
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateCategoryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Description != nil {
		set["description"] = *body.Description
	}
	if body.AllowMultipleAssignments != nil {
		set["allow_multiple_assignments"] = *body.AllowMultipleAssignments
	}
	if body.RequiresMaintenance != nil {
		set["requires_maintenance"] = *body.RequiresMaintenance
	}
	if body.MaintenanceFrequency != nil {
		set["maintenance_frequency"] = *body.MaintenanceFrequency
	}
	if len(set) == 0 {
		respondError(w, http.StatusBadRequest, "no updatable fields in body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	if err := h.categories.UpdateCategory(ctx, id, set); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	category, err := h.categories.FindCategoryByID(ctx, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /categories/{id}. A category that still has assets
// cannot be deleted.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	count, err := h.assets.CountAssets(ctx, bson.M{"category_id": id})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if count > 0 {
		respondError(w, http.StatusConflict, "category has assets")
		return
	}

	if err := h.categories.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
