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

// RequestHandler exposes the approval workflow.
type RequestHandler struct {
	workflow *service.Workflow
	requests db.RequestCollection
}

// NewRequestHandler creates a request handler.
func NewRequestHandler(workflow *service.Workflow, requests db.RequestCollection) *RequestHandler {
	return &RequestHandler{workflow: workflow, requests: requests}
}

type createRequestBody struct {
	Type         models.RequestType         `json:"type"`
	Requestor    string                     `json:"requestor"`
	Approvers    []models.Approver          `json:"approvers"`
	AssetDetails models.RequestAssetDetails `json:"asset_details"`
}

// Create handles POST /requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Type == "" || body.Requestor == "" {
		respondError(w, http.StatusBadRequest, "type and requestor are required")
		return
	}
	if len(body.Approvers) == 0 {
		respondError(w, http.StatusBadRequest, "at least one approver is required")
		return
	}
	for i := range body.Approvers {
		body.Approvers[i].Status = models.ApproverPending
		body.Approvers[i].ActedAt = nil
	}

	request := models.Request{
		ID:           models.NewRequestID(),
		Type:         body.Type,
		Status:       models.RequestPending,
		Requestor:    body.Requestor,
		Approvers:    body.Approvers,
		AssetDetails: body.AssetDetails,
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	if err := h.requests.InsertRequest(ctx, request); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, request)
}

// List handles GET /requests.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	filter := bson.M{}
	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		filter["status"] = status
	}
	if requestType := query.Get("type"); requestType != "" {
		filter["type"] = requestType
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	requests, err := h.requests.FindRequests(ctx, filter, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if requests == nil {
		requests = []models.Request{}
	}
	respondJSON(w, http.StatusOK, requests)
}

// Get handles GET /requests/{id}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	request, err := h.requests.FindRequestByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "request not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, request)
}

// UpdateStatus handles PUT /requests/{id}.
func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body service.ApprovalInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout*time.Second)
	defer cancel()

	request, err := h.workflow.UpdateStatus(ctx, mux.Vars(r)["id"], body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, request)
}
