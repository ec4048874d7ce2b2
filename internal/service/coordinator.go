package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/events"
	"github.com/uydev/asset-tracker/internal/models"
)

const defaultAssignmentDays = 365

// Coordinator executes the assign/unassign transitions across the asset
// catalog, the employee directory and the assignment ledger.
//
// The writes are not wrapped in a multi-document transaction. Instead the
// conditional claim on the asset document is the linearization point: two
// concurrent assigns on the same asset cannot both match
// has_active_assignment == false, and the loser's ledger entry is deleted
// as compensation. The ledger close on unassign is conditional on
// return_date being unset, so an episode is closed at most once.
type Coordinator struct {
	assets      db.AssetCollection
	employees   db.EmployeeCollection
	assignments db.AssignmentCollection
	categories  db.CategoryCollection
	publisher   events.Publisher

	now func() time.Time
}

// NewCoordinator creates an assignment coordinator.
func NewCoordinator(assets db.AssetCollection, employees db.EmployeeCollection, assignments db.AssignmentCollection, categories db.CategoryCollection, publisher events.Publisher) *Coordinator {
	return &Coordinator{
		assets:      assets,
		employees:   employees,
		assignments: assignments,
		categories:  categories,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Assign opens a new assignment episode for the asset and employee and
// returns the updated asset view.
func (c *Coordinator) Assign(ctx context.Context, assetID, employeeID string, opts models.AssignOptions) (*models.Asset, error) {
	asset, err := c.assets.FindAssetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	employee, err := c.employees.FindEmployeeByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	// Missing category means the strictest policy applies.
	allowMultiple := false
	category, err := c.categories.FindCategoryByID(ctx, asset.CategoryID)
	if err == nil {
		allowMultiple = category.AllowMultipleAssignments
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if !allowMultiple && asset.HasActiveAssignment {
		return nil, ErrAssetAlreadyAssigned
	}

	now := c.now()
	expectedReturn, err := resolveExpectedReturn(opts, now)
	if err != nil {
		return nil, err
	}

	condition := opts.Condition
	if condition == "" {
		condition = asset.Condition
	}

	rec := models.AssignmentRecord{
		ID:                    models.NewAssignmentID(),
		AssetID:               asset.ID,
		AssetName:             asset.Name,
		EmployeeID:            employee.ID,
		EmployeeName:          employee.Name,
		AssignmentDate:        now,
		ExpectedReturnDate:    expectedReturn,
		Status:                models.AssignmentActive,
		ConditionAtAssignment: condition,
		Notes:                 opts.Notes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := c.assignments.InsertAssignment(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}

	claimed, err := c.assets.MarkAssigned(ctx, asset.ID, !allowMultiple, rec)
	if err != nil {
		c.compensateLedger(ctx, rec.ID)
		return nil, fmt.Errorf("claim asset: %w", err)
	}
	if !claimed {
		// Lost a race with a concurrent assign.
		c.compensateLedger(ctx, rec.ID)
		return nil, ErrAssetAlreadyAssigned
	}

	snap := models.AssetSnapshot{
		AssetID:            asset.ID,
		AssetName:          asset.Name,
		SerialNumber:       asset.SerialNumber,
		CategoryID:         asset.CategoryID,
		AssignmentID:       rec.ID,
		AssignmentDate:     now,
		ExpectedReturnDate: expectedReturn,
	}
	if err := c.employees.AddAssignment(ctx, employee.ID, snap, rec); err != nil {
		if relErr := c.assets.ReleaseAssignment(ctx, asset.ID, rec.ID); relErr != nil {
			log.WithError(relErr).WithField("asset_id", asset.ID).Error("failed to release asset during assign compensation")
		}
		c.compensateLedger(ctx, rec.ID)
		return nil, fmt.Errorf("update employee: %w", err)
	}

	c.publisher.Publish(events.Event{
		Type:         events.TypeAssetAssigned,
		AssetID:      asset.ID,
		EmployeeID:   employee.ID,
		AssignmentID: rec.ID,
		Timestamp:    now,
	})
	log.WithFields(log.Fields{
		"asset_id":      asset.ID,
		"employee_id":   employee.ID,
		"assignment_id": rec.ID,
	}).Info("asset assigned")

	return c.assets.FindAssetByID(ctx, asset.ID)
}

// Unassign closes an open assignment episode and returns the updated asset
// view. Closing an already-returned episode is rejected so a double return
// can never corrupt the employee's counters.
func (c *Coordinator) Unassign(ctx context.Context, assignmentID string, opts models.UnassignOptions) (*models.Asset, error) {
	rec, err := c.assignments.FindAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if rec.ReturnDate != nil {
		return nil, ErrAssignmentAlreadyReturned
	}

	returnDate := c.now()
	if opts.ReturnDate != "" {
		parsed, err := parseDate(opts.ReturnDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad return_date %q", ErrInvalidInput, opts.ReturnDate)
		}
		returnDate = parsed
	}
	conditionAfter := opts.ConditionAfter
	if conditionAfter == "" {
		conditionAfter = rec.ConditionAtAssignment
	}

	closed, err := c.assignments.CloseAssignment(ctx, rec.ID, returnDate, conditionAfter, opts.Notes)
	if err != nil {
		return nil, fmt.Errorf("close assignment: %w", err)
	}
	if !closed {
		return nil, ErrAssignmentAlreadyReturned
	}

	rec.Status = models.AssignmentReturned
	rec.ReturnDate = &returnDate
	rec.ConditionAfter = conditionAfter
	rec.ReturnNotes = opts.Notes

	// Both sides are recomputed from open ledger entries rather than
	// decremented, repairing any drift left by earlier partial failures.
	// For the asset this also keeps a shareable asset assigned while other
	// episodes remain open.
	assetOpen, err := c.assignments.CountOpenForAsset(ctx, rec.AssetID)
	if err != nil {
		return nil, fmt.Errorf("count open assignments: %w", err)
	}
	matched, err := c.assets.MarkReturned(ctx, rec.AssetID, *rec, assetOpen)
	if err != nil {
		return nil, fmt.Errorf("assignment closed but asset update failed: %w", err)
	}
	if !matched {
		log.WithField("asset_id", rec.AssetID).Warn("asset missing while closing assignment")
	}

	openCount, err := c.assignments.CountOpenForEmployee(ctx, rec.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("count open assignments: %w", err)
	}
	if err := c.employees.RemoveAssignment(ctx, rec.EmployeeID, *rec, openCount); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.WithField("employee_id", rec.EmployeeID).Warn("employee missing while closing assignment")
		} else {
			return nil, fmt.Errorf("assignment closed but employee update failed: %w", err)
		}
	}

	c.publisher.Publish(events.Event{
		Type:         events.TypeAssetReturned,
		AssetID:      rec.AssetID,
		EmployeeID:   rec.EmployeeID,
		AssignmentID: rec.ID,
		Timestamp:    returnDate,
	})
	log.WithFields(log.Fields{
		"asset_id":      rec.AssetID,
		"employee_id":   rec.EmployeeID,
		"assignment_id": rec.ID,
	}).Info("asset returned")

	return c.assets.FindAssetByID(ctx, rec.AssetID)
}

func (c *Coordinator) compensateLedger(ctx context.Context, assignmentID string) {
	if err := c.assignments.DeleteAssignment(ctx, assignmentID); err != nil {
		log.WithError(err).WithField("assignment_id", assignmentID).Error("failed to delete ledger entry during assign compensation")
	}
}

// resolveExpectedReturn picks the expected return date in priority order:
// explicit duration, explicit date string, default of one year.
func resolveExpectedReturn(opts models.AssignOptions, now time.Time) (*time.Time, error) {
	if opts.DurationValue > 0 {
		days, err := durationUnitDays(opts.DurationUnit)
		if err != nil {
			return nil, err
		}
		t := now.AddDate(0, 0, opts.DurationValue*days)
		return &t, nil
	}
	if opts.ExpectedReturnDate != "" {
		t, err := parseDate(opts.ExpectedReturnDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad expected_return_date %q", ErrInvalidInput, opts.ExpectedReturnDate)
		}
		return &t, nil
	}
	t := now.AddDate(0, 0, defaultAssignmentDays)
	return &t, nil
}

func durationUnitDays(unit string) (int, error) {
	switch strings.ToLower(unit) {
	case "", "day", "days":
		return 1, nil
	case "week", "weeks":
		return 7, nil
	case "month", "months":
		return 30, nil
	case "year", "years":
		return 365, nil
	default:
		return 0, fmt.Errorf("%w: unknown duration unit %q", ErrInvalidInput, unit)
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
