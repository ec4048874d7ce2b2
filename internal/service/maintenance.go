package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/events"
	"github.com/uydev/asset-tracker/internal/models"
)

// MaintenanceTracker records maintenance requests and completions against an
// asset, keeping the maintenance ledger and the asset's embedded mirror in
// sync.
type MaintenanceTracker struct {
	assets      db.AssetCollection
	categories  db.CategoryCollection
	maintenance db.MaintenanceCollection
	publisher   events.Publisher

	now func() time.Time
}

// NewMaintenanceTracker creates a maintenance tracker.
func NewMaintenanceTracker(assets db.AssetCollection, categories db.CategoryCollection, maintenance db.MaintenanceCollection, publisher events.Publisher) *MaintenanceTracker {
	return &MaintenanceTracker{
		assets:      assets,
		categories:  categories,
		maintenance: maintenance,
		publisher:   publisher,
		now:         time.Now,
	}
}

// MaintenanceRequestInput carries the caller-supplied fields of a
// maintenance request.
type MaintenanceRequestInput struct {
	MaintenanceType string  `json:"maintenance_type"`
	Description     string  `json:"description,omitempty"`
	Technician      string  `json:"technician,omitempty"`
	Cost            float64 `json:"cost,omitempty"`
}

// MaintenanceCompleteInput carries the caller-supplied fields of a
// maintenance completion.
type MaintenanceCompleteInput struct {
	ConditionAfter string  `json:"condition_after,omitempty"`
	Cost           float64 `json:"cost,omitempty"`
	CompletedDate  string  `json:"completed_date,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// Request opens a maintenance episode for the asset. The asset's category
// must require maintenance.
func (t *MaintenanceTracker) Request(ctx context.Context, assetID string, in MaintenanceRequestInput) (*models.Asset, error) {
	asset, err := t.assets.FindAssetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	category, err := t.categories.FindCategoryByID(ctx, asset.CategoryID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if !category.RequiresMaintenance {
		return nil, ErrMaintenanceNotRequired
	}

	now := t.now()
	maintenanceType := in.MaintenanceType
	if maintenanceType == "" {
		maintenanceType = "repair"
	}
	rec := models.MaintenanceRecord{
		ID:              models.NewMaintenanceID(),
		AssetID:         asset.ID,
		MaintenanceType: maintenanceType,
		Status:          models.MaintenanceRequested,
		Description:     in.Description,
		ConditionBefore: asset.Condition,
		MaintenanceDate: now,
		Cost:            in.Cost,
		Technician:      in.Technician,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := t.maintenance.InsertMaintenance(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert maintenance record: %w", err)
	}
	if err := t.assets.AppendMaintenance(ctx, asset.ID, models.AssetMaintenanceRequested, rec); err != nil {
		if delErr := t.maintenance.DeleteMaintenance(ctx, rec.ID); delErr != nil {
			log.WithError(delErr).WithField("maintenance_id", rec.ID).Error("failed to delete maintenance record during compensation")
		}
		return nil, fmt.Errorf("update asset: %w", err)
	}

	t.publisher.Publish(events.Event{
		Type:          events.TypeMaintenanceRequested,
		AssetID:       asset.ID,
		MaintenanceID: rec.ID,
		Timestamp:     now,
	})
	log.WithFields(log.Fields{
		"asset_id":       asset.ID,
		"maintenance_id": rec.ID,
		"type":           maintenanceType,
	}).Info("maintenance requested")

	return t.assets.FindAssetByID(ctx, asset.ID)
}

// Complete closes a maintenance episode and restores the asset to service.
// The next maintenance date is derived from the category's frequency policy;
// a malformed policy string means no next date, not an error.
func (t *MaintenanceTracker) Complete(ctx context.Context, assetID, maintenanceID string, in MaintenanceCompleteInput) (*models.Asset, error) {
	asset, err := t.assets.FindAssetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	rec, err := t.maintenance.FindMaintenanceByID(ctx, maintenanceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, err
	}
	if rec.AssetID != asset.ID {
		return nil, ErrMaintenanceNotFound
	}

	completed := t.now()
	if in.CompletedDate != "" {
		parsed, err := parseDate(in.CompletedDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad completed_date %q", ErrInvalidInput, in.CompletedDate)
		}
		completed = parsed
	}

	var next *time.Time
	if category, err := t.categories.FindCategoryByID(ctx, asset.CategoryID); err == nil {
		next = nextMaintenanceDate(category.MaintenanceFrequency, completed)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	rec.CompletedDate = &completed
	rec.ConditionAfter = in.ConditionAfter
	rec.NextScheduledMaintenance = next
	if in.Cost > 0 {
		rec.Cost = in.Cost
	}
	if in.Notes != "" {
		rec.Notes = in.Notes
	}

	done, err := t.maintenance.CompleteMaintenance(ctx, *rec)
	if err != nil {
		return nil, fmt.Errorf("complete maintenance record: %w", err)
	}
	if !done {
		return nil, ErrMaintenanceFinalized
	}
	if _, err := t.assets.CompleteMaintenance(ctx, asset.ID, *rec); err != nil {
		return nil, fmt.Errorf("maintenance completed but asset update failed: %w", err)
	}

	t.publisher.Publish(events.Event{
		Type:          events.TypeMaintenanceCompleted,
		AssetID:       asset.ID,
		MaintenanceID: rec.ID,
		Timestamp:     completed,
	})
	log.WithFields(log.Fields{
		"asset_id":       asset.ID,
		"maintenance_id": rec.ID,
	}).Info("maintenance completed")

	return t.assets.FindAssetByID(ctx, asset.ID)
}

// nextMaintenanceDate parses a "<int> <unit>" frequency policy and adds it
// to the completion date. Returns nil when the policy is empty or malformed.
func nextMaintenanceDate(frequency string, from time.Time) *time.Time {
	days, ok := parseFrequencyDays(frequency)
	if !ok {
		return nil
	}
	t := from.AddDate(0, 0, days)
	return &t
}

// parseFrequencyDays converts a frequency policy string to days. Months
// count as 30 days, years as 365.
func parseFrequencyDays(frequency string) (int, bool) {
	fields := strings.Fields(frequency)
	if len(fields) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	switch strings.ToLower(fields[1]) {
	case "day", "days":
		return n, true
	case "month", "months":
		return n * 30, true
	case "year", "years":
		return n * 365, true
	default:
		return 0, false
	}
}
