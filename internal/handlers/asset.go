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

// AssetHandler exposes asset catalog CRUD.
type AssetHandler struct {
	assets     db.AssetCollection
	categories db.CategoryCollection
}

// NewAssetHandler creates an asset handler.
func NewAssetHandler(assets db.AssetCollection, categories db.CategoryCollection) *AssetHandler {
	return &AssetHandler{assets: assets, categories: categories}
}

type createAssetBody struct {
	Name         string             `json:"name"`
	SerialNumber string             `json:"serial_number"`
	CategoryID   string             `json:"category_id"`
	Condition    string             `json:"condition"`
	Location     string             `json:"location"`
	Department   string             `json:"department"`
	PurchaseCost float64            `json:"purchase_cost"`
	PurchaseDate *time.Time         `json:"purchase_date,omitempty"`
	Status       models.AssetStatus `json:"status,omitempty"`
}

// Create handles POST /assets.
func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createAssetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Name == "" || body.CategoryID == "" {
		respondError(w, http.StatusBadRequest, "name and category_id are required")
		return
	}
	status := body.Status
	if status == "" {
		status = models.AssetAvailable
	}
	if !models.IsValidAssetStatus(status) {
		respondError(w, http.StatusBadRequest, "unknown asset status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	if _, err := h.categories.FindCategoryByID(ctx, body.CategoryID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	asset := models.Asset{
		ID:            models.NewAssetID(),
		Name:          body.Name,
		SerialNumber:  body.SerialNumber,
		CategoryID:    body.CategoryID,
		Status:        status,
		Condition:     body.Condition,
		Location:      body.Location,
		Department:    body.Department,
		PurchaseCost:  body.PurchaseCost,
		PurchaseDate:  body.PurchaseDate,
		IsOperational: true,
	}
	if err := h.assets.InsertAsset(ctx, asset); err != nil {
		respondServiceError(w, err)
		return
	}

	created, err := h.assets.FindAssetByID(ctx, asset.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// List handles GET /assets.
func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	filter := bson.M{}
	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		filter["status"] = status
	}
	if categoryID := query.Get("category_id"); categoryID != "" {
		filter["category_id"] = categoryID
	}
	if department := query.Get("department"); department != "" {
		filter["department"] = department
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	assets, err := h.assets.FindAssets(ctx, filter, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	respondJSON(w, http.StatusOK, assets)
}

// Get handles GET /assets/{id}.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	asset, err := h.assets.FindAssetByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "asset not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

type updateAssetBody struct {
	Name         *string             `json:"name,omitempty"`
	SerialNumber *string             `json:"serial_number,omitempty"`
	Condition    *string             `json:"condition,omitempty"`
	Location     *string             `json:"location,omitempty"`
	Department   *string             `json:"department,omitempty"`
	PurchaseCost *float64            `json:"purchase_cost,omitempty"`
	Status       *models.AssetStatus `json:"status,omitempty"`
}

// Update handles PUT /assets/{id}. Assignment fields are owned by the
// coordinator and cannot be changed here.
func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateAssetBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.SerialNumber != nil {
		set["serial_number"] = *body.SerialNumber
	}
	if body.Condition != nil {
		set["condition"] = *body.Condition
	}
	if body.Location != nil {
		set["location"] = *body.Location
	}
	if body.Department != nil {
		set["department"] = *body.Department
	}
	if body.PurchaseCost != nil {
		set["purchase_cost"] = *body.PurchaseCost
	}
	if body.Status != nil {
		if !models.IsValidAssetStatus(*body.Status) {
			respondError(w, http.StatusBadRequest, "unknown asset status")
			return
		}
		set["status"] = *body.Status
	}
	if len(set) == 0 {
		respondError(w, http.StatusBadRequest, "no updatable fields in body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	if err := h.assets.UpdateAsset(ctx, id, set); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "asset not found")
			return
		}
		respondServiceError(w, err)
		return
	}

	asset, err := h.assets.FindAssetByID(ctx, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

// Delete handles DELETE /assets/{id}. An asset with an active assignment
// cannot be deleted.
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	asset, err := h.assets.FindAssetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "asset not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	if asset.HasActiveAssignment {
		respondError(w, http.StatusConflict, "asset has an active assignment")
		return
	}

	if err := h.assets.DeleteAsset(ctx, id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
