package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/events"
	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Workflow runs the approval pipeline: each approver records an individual
// decision, the overall status is derived from all of them, and reaching
// approved fires the type-specific side effect. The effect runs before the
// terminal status is persisted, so a request whose effect fails stays
// pending and retryable.
type Workflow struct {
	requests  db.RequestCollection
	assets    db.AssetCollection
	publisher events.Publisher

	effects map[models.RequestType]func(ctx context.Context, req *models.Request) error
	now     func() time.Time
}

// NewWorkflow creates an approval workflow engine.
func NewWorkflow(requests db.RequestCollection, assets db.AssetCollection, publisher events.Publisher) *Workflow {
	w := &Workflow{
		requests:  requests,
		assets:    assets,
		publisher: publisher,
		now:       time.Now,
	}
	// Side effects are keyed by request type; types without an entry are
	// logged and otherwise a no-op.
	w.effects = map[models.RequestType]func(ctx context.Context, req *models.Request) error{
		models.RequestMaintenanceApproval: w.applyMaintenanceApproval,
		models.RequestAssetReturn:         w.applyAssetReturn,
	}
	return w
}

// ApprovalInput is one approver's decision on a request.
type ApprovalInput struct {
	ApproverID string                `json:"approver_id"`
	Status     models.ApproverStatus `json:"status"`
	Comment    string                `json:"comment,omitempty"`
}

// UpdateStatus applies one approver's decision and recomputes the overall
// request status. A request that already reached a terminal state cannot be
// changed again.
func (w *Workflow) UpdateStatus(ctx context.Context, requestID string, in ApprovalInput) (*models.Request, error) {
	if in.ApproverID == "" {
		return nil, fmt.Errorf("%w: approver_id is required", ErrInvalidInput)
	}
	if in.Status != models.ApproverApproved && in.Status != models.ApproverRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidInput)
	}

	req, err := w.requests.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.Terminal() {
		return nil, ErrRequestFinalized
	}

	found := false
	now := w.now()
	for i := range req.Approvers {
		if req.Approvers[i].EmployeeID == in.ApproverID {
			req.Approvers[i].Status = in.Status
			req.Approvers[i].Comment = in.Comment
			req.Approvers[i].ActedAt = &now
			found = true
			break
		}
	}
	if !found {
		return nil, ErrApproverNotFound
	}

	req.Status = deriveRequestStatus(req.Approvers)
	req.UpdatedAt = now

	// The side effect runs before the terminal status is written. A failed
	// effect leaves the request pending in storage, so the decision can be
	// retried; the effect updates are absolute sets and a retry repeating
	// one is harmless.
	if req.Status == models.RequestApproved {
		if err := w.applyEffect(ctx, req); err != nil {
			return nil, err
		}
	}

	if err := w.requests.UpdateRequest(ctx, req.ID, bson.M{
		"approvers": req.Approvers,
		"status":    req.Status,
	}); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}

	if req.Terminal() {
		w.publishOutcome(req)
	}
	return req, nil
}

// deriveRequestStatus computes the overall status from the individual
// approver decisions: any rejection rejects the request, unanimous approval
// approves it, anything else keeps it pending.
func deriveRequestStatus(approvers []models.Approver) models.RequestStatus {
	if len(approvers) == 0 {
		return models.RequestPending
	}
	allApproved := true
	for _, a := range approvers {
		switch a.Status {
		case models.ApproverRejected:
			return models.RequestRejected
		case models.ApproverApproved:
		default:
			allApproved = false
		}
	}
	if allApproved {
		return models.RequestApproved
	}
	return models.RequestPending
}

// applyEffect runs the type-specific asset mutation for an approved request.
// A rejection never reaches here: only approval touches the asset.
func (w *Workflow) applyEffect(ctx context.Context, req *models.Request) error {
	effect, ok := w.effects[req.Type]
	if !ok {
		log.WithFields(log.Fields{
			"request_id": req.ID,
			"type":       req.Type,
		}).Info("request approved, no side effect for type")
		return nil
	}
	if err := effect(ctx, req); err != nil {
		return fmt.Errorf("apply %s effect: %w", req.Type, err)
	}
	log.WithFields(log.Fields{
		"request_id": req.ID,
		"type":       req.Type,
		"asset_id":   req.AssetDetails.AssetID,
	}).Info("request approved, side effect applied")
	return nil
}

// publishOutcome announces the terminal decision once it is durable.
func (w *Workflow) publishOutcome(req *models.Request) {
	eventType := events.TypeRequestRejected
	if req.Status == models.RequestApproved {
		eventType = events.TypeRequestApproved
	}
	w.publisher.Publish(events.Event{
		Type:      eventType,
		RequestID: req.ID,
		AssetID:   req.AssetDetails.AssetID,
		Timestamp: w.now(),
	})
}

func (w *Workflow) applyMaintenanceApproval(ctx context.Context, req *models.Request) error {
	if req.AssetDetails.AssetID == "" {
		return fmt.Errorf("%w: request has no asset_id", ErrInvalidInput)
	}
	return w.assets.UpdateAsset(ctx, req.AssetDetails.AssetID, bson.M{
		"status":         models.AssetUnderMaintenance,
		"is_operational": false,
	})
}

func (w *Workflow) applyAssetReturn(ctx context.Context, req *models.Request) error {
	if req.AssetDetails.AssetID == "" {
		return fmt.Errorf("%w: request has no asset_id", ErrInvalidInput)
	}
	return w.assets.UpdateAsset(ctx, req.AssetDetails.AssetID, bson.M{
		"status":                models.AssetAvailable,
		"has_active_assignment": false,
		"current_assignee_id":   "",
		"current_assignee_name": "",
		"current_assignment_id": "",
	})
}
