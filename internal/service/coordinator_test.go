package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uydev/asset-tracker/internal/db"
	"github.com/uydev/asset-tracker/internal/events"
	"github.com/uydev/asset-tracker/internal/models"
)

func testCoordinator(assets *MockAssetCollection, employees *MockEmployeeCollection, assignments *MockAssignmentCollection, categories *MockCategoryCollection, pub events.Publisher, now time.Time) *Coordinator {
	c := NewCoordinator(assets, employees, assignments, categories, pub)
	c.now = func() time.Time { return now }
	return c
}

func availableAsset() *models.Asset {
	return &models.Asset{
		ID:            "AST-00000001",
		Name:          "ThinkPad X1",
		SerialNumber:  "SN-001",
		CategoryID:    "CAT-00000001",
		Status:        models.AssetAvailable,
		Condition:     "good",
		IsOperational: true,
	}
}

func testEmployee() *models.Employee {
	return &models.Employee{
		ID:         "EMP-00000001",
		Name:       "Ada Walker",
		Email:      "ada@example.com",
		Department: "Engineering",
	}
}

func TestCoordinator_Assign(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("successful assign", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		assignments := new(MockAssignmentCollection)
		categories := new(MockCategoryCollection)
		pub := &recordingPublisher{}
		c := testCoordinator(assets, employees, assignments, categories, pub, now)

		asset := availableAsset()
		assigned := availableAsset()
		assigned.HasActiveAssignment = true
		assigned.Status = models.AssetAssigned
		assigned.CurrentAssigneeID = "EMP-00000001"

		assets.On("FindAssetByID", mock.Anything, asset.ID).Return(asset, nil).Once()
		employees.On("FindEmployeeByID", mock.Anything, "EMP-00000001").Return(testEmployee(), nil)
		categories.On("FindCategoryByID", mock.Anything, asset.CategoryID).Return(&models.Category{
			ID:                       asset.CategoryID,
			AllowMultipleAssignments: false,
		}, nil)
		assignments.On("InsertAssignment", mock.Anything, mock.MatchedBy(func(rec models.AssignmentRecord) bool {
			return rec.AssetID == asset.ID &&
				rec.EmployeeID == "EMP-00000001" &&
				rec.Status == models.AssignmentActive &&
				rec.ExpectedReturnDate != nil &&
				rec.ExpectedReturnDate.Equal(now.AddDate(0, 0, 365))
		})).Return(nil)
		assets.On("MarkAssigned", mock.Anything, asset.ID, true, mock.Anything).Return(true, nil)
		employees.On("AddAssignment", mock.Anything, "EMP-00000001", mock.Anything, mock.Anything).Return(nil)
		assets.On("FindAssetByID", mock.Anything, asset.ID).Return(assigned, nil).Once()

		result, err := c.Assign(context.Background(), asset.ID, "EMP-00000001", models.AssignOptions{})
		require.NoError(t, err)
		assert.True(t, result.HasActiveAssignment)
		assert.Equal(t, models.AssetAssigned, result.Status)

		published := pub.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.TypeAssetAssigned, published[0].Type)
		assert.Equal(t, asset.ID, published[0].AssetID)

		assets.AssertExpectations(t)
		employees.AssertExpectations(t)
		assignments.AssertExpectations(t)
	})

	t.Run("asset already assigned", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		assignments := new(MockAssignmentCollection)
		categories := new(MockCategoryCollection)
		c := testCoordinator(assets, employees, assignments, categories, events.NoopPublisher{}, now)

		asset := availableAsset()
		asset.HasActiveAssignment = true
		asset.Status = models.AssetAssigned

		assets.On("FindAssetByID", mock.Anything, asset.ID).Return(asset, nil)
		employees.On("FindEmployeeByID", mock.Anything, "EMP-00000001").Return(testEmployee(), nil)
		categories.On("FindCategoryByID", mock.Anything, asset.CategoryID).Return(&models.Category{
			ID: asset.CategoryID,
		}, nil)

		_, err := c.Assign(context.Background(), asset.ID, "EMP-00000001", models.AssignOptions{})
		assert.ErrorIs(t, err, ErrAssetAlreadyAssigned)
		assignments.AssertNotCalled(t, "InsertAssignment", mock.Anything, mock.Anything)
	})

	t.Run("shareable category allows second assignment", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		assignments := new(MockAssignmentCollection)
		categories := new(MockCategoryCollection)
		c := testCoordinator(assets, employees, assignments, categories, events.NoopPublisher{}, now)

		asset := availableAsset()
		asset.HasActiveAssignment = true

		assets.On("FindAssetByID", mock.Anything, asset.ID).Return(asset, nil)
		employees.On("FindEmployeeByID", mock.Anything, "EMP-00000001").Return(testEmployee(), nil)
		categories.On("FindCategoryByID", mock.Anything, asset.CategoryID).Return(&models.Category{
			ID:                       asset.CategoryID,
			AllowMultipleAssignments: true,
		}, nil)
		assignments.On("InsertAssignment", mock.Anything, mock.Anything).Return(nil)
		// Shared assets are claimed without the unassigned precondition.
		assets.On("MarkAssigned", mock.Anything, asset.ID, false, mock.Anything).Return(true, nil)
		employees.On("AddAssignment", mock.Anything, "EMP-00000001", mock.Anything, mock.Anything).Return(nil)

		_, err := c.Assign(context.Background(), asset.ID, "EMP-00000001", models.AssignOptions{})
		require.NoError(t, err)
		assets.AssertExpectations(t)
	})

	t.Run("lost claim race compensates ledger", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		assignments := new(MockAssignmentCollection)
		categories := new(MockCategoryCollection)
		c := testCoordinator(assets, employees, assignments, categories, events.NoopPublisher{}, now)

		asset := availableAsset()
		assets.On("FindAssetByID", mock.Anything, asset.ID).Return(asset, nil)
		employees.On("FindEmployeeByID", mock.Anything, "EMP-00000001").Return(testEmployee(), nil)
		categories.On("FindCategoryByID", mock.Anything, asset.CategoryID).Return(&models.Category{ID: asset.CategoryID}, nil)
		assignments.On("InsertAssignment", mock.Anything, mock.Anything).Return(nil)
		assets.On("MarkAssigned", mock.Anything, asset.ID, true, mock.Anything).Return(false, nil)
		assignments.On("DeleteAssignment", mock.Anything, mock.Anything).Return(nil)

		_, err := c.Assign(context.Background(), asset.ID, "EMP-00000001", models.AssignOptions{})
		assert.ErrorIs(t, err, ErrAssetAlreadyAssigned)
		assignments.AssertCalled(t, "DeleteAssignment", mock.Anything, mock.Anything)
		employees.AssertNotCalled(t, "AddAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("employee update failure unwinds claim and ledger", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		assignments := new(MockAssignmentCollection)
		categories := new(MockCategoryCollection)
		c := testCoordinator(assets, employees, assignments, categories, events.NoopPublisher{}, now)

		asset := availableAsset()
		assets.On("FindAssetByID", mock.Anything, asset.ID).Return(asset, nil)
		employees.On("FindEmployeeByID", mock.Anything, "EMP-00000001").Return(testEmployee(), nil)
		categories.On("FindCategoryByID", mock.Anything, asset.CategoryID).Return(&models.Category{ID: asset.CategoryID}, nil)
		assignments.On("InsertAssignment", mock.Anything, mock.Anything).Return(nil)
		assets.On("MarkAssigned", mock.Anything, asset.ID, true, mock.Anything).Return(true, nil)
		employees.On("AddAssignment", mock.Anything, "EMP-00000001", mock.Anything, mock.Anything).Return(errors.New("write failed"))
		assets.On("ReleaseAssignment", mock.Anything, asset.ID, mock.Anything).Return(nil)
		assignments.On("DeleteAssignment", mock.Anything, mock.Anything).Return(nil)

		_, err := c.Assign(context.Background(), asset.ID, "EMP-00000001", models.AssignOptions{})
		require.Error(t, err)
		assets.AssertCalled(t, "ReleaseAssignment", mock.Anything, asset.ID, mock.Anything)
		assignments.AssertCalled(t, "DeleteAssignment", mock.Anything, mock.Anything)
	})

	t.Run("asset not found", func(t *testing.T) {
		assets := new(MockAssetCollection)
		c := testCoordinator(assets, new(MockEmployeeCollection), new(MockAssignmentCollection), new(MockCategoryCollection), events.NoopPublisher{}, now)

		assets.On("FindAssetByID", mock.Anything, "AST-missing").Return(nil, db.ErrNotFound)

		_, err := c.Assign(context.Background(), "AST-missing", "EMP-00000001", models.AssignOptions{})
		assert.ErrorIs(t, err, ErrAssetNotFound)
	})

	t.Run("unknown duration unit", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		categories := new(MockCategoryCollection)
		c := testCoordinator(assets, employees, new(MockAssignmentCollection), categories, events.NoopPublisher{}, now)

		asset := availableAsset()
		assets.On("FindAssetByID", mock.Anything, asset.ID).Return(asset, nil)
		employees.On("FindEmployeeByID", mock.Anything, "EMP-00000001").Return(testEmployee(), nil)
		categories.On("FindCategoryByID", mock.Anything, asset.CategoryID).Return(&models.Category{ID: asset.CategoryID}, nil)

		_, err := c.Assign(context.Background(), asset.ID, "EMP-00000001", models.AssignOptions{
			DurationValue: 2,
			DurationUnit:  "fortnights",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCoordinator_Unassign(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	openRecord := func() *models.AssignmentRecord {
		return &models.AssignmentRecord{
			ID:                    "ASG-00000001",
			AssetID:               "AST-00000001",
			AssetName:             "ThinkPad X1",
			EmployeeID:            "EMP-00000001",
			EmployeeName:          "Ada Walker",
			AssignmentDate:        now.AddDate(0, 0, -30),
			Status:                models.AssignmentActive,
			ConditionAtAssignment: "good",
		}
	}

	t.Run("successful return", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		assignments := new(MockAssignmentCollection)
		pub := &recordingPublisher{}
		c := testCoordinator(assets, employees, assignments, new(MockCategoryCollection), pub, now)

		rec := openRecord()
		assignments.On("FindAssignmentByID", mock.Anything, rec.ID).Return(rec, nil)
		assignments.On("CloseAssignment", mock.Anything, rec.ID, now, "good", "").Return(true, nil)
		assignments.On("CountOpenForAsset", mock.Anything, rec.AssetID).Return(int64(0), nil)
		assets.On("MarkReturned", mock.Anything, rec.AssetID, mock.MatchedBy(func(r models.AssignmentRecord) bool {
			return r.Status == models.AssignmentReturned && r.ReturnDate != nil && r.ReturnDate.Equal(now)
		}), int64(0)).Return(true, nil)
		assignments.On("CountOpenForEmployee", mock.Anything, rec.EmployeeID).Return(int64(0), nil)
		employees.On("RemoveAssignment", mock.Anything, rec.EmployeeID, mock.Anything, int64(0)).Return(nil)

		returned := availableAsset()
		assets.On("FindAssetByID", mock.Anything, rec.AssetID).Return(returned, nil)

		result, err := c.Unassign(context.Background(), rec.ID, models.UnassignOptions{})
		require.NoError(t, err)
		assert.False(t, result.HasActiveAssignment)
		assert.Equal(t, models.AssetAvailable, result.Status)

		published := pub.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.TypeAssetReturned, published[0].Type)

		assets.AssertExpectations(t)
		employees.AssertExpectations(t)
		assignments.AssertExpectations(t)
	})

	t.Run("already returned", func(t *testing.T) {
		assignments := new(MockAssignmentCollection)
		c := testCoordinator(new(MockAssetCollection), new(MockEmployeeCollection), assignments, new(MockCategoryCollection), events.NoopPublisher{}, now)

		rec := openRecord()
		past := now.AddDate(0, 0, -1)
		rec.ReturnDate = &past
		rec.Status = models.AssignmentReturned
		assignments.On("FindAssignmentByID", mock.Anything, rec.ID).Return(rec, nil)

		_, err := c.Unassign(context.Background(), rec.ID, models.UnassignOptions{})
		assert.ErrorIs(t, err, ErrAssignmentAlreadyReturned)
		assignments.AssertNotCalled(t, "CloseAssignment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent close loses", func(t *testing.T) {
		assets := new(MockAssetCollection)
		assignments := new(MockAssignmentCollection)
		c := testCoordinator(assets, new(MockEmployeeCollection), assignments, new(MockCategoryCollection), events.NoopPublisher{}, now)

		rec := openRecord()
		assignments.On("FindAssignmentByID", mock.Anything, rec.ID).Return(rec, nil)
		assignments.On("CloseAssignment", mock.Anything, rec.ID, now, "good", "").Return(false, nil)

		_, err := c.Unassign(context.Background(), rec.ID, models.UnassignOptions{})
		assert.ErrorIs(t, err, ErrAssignmentAlreadyReturned)
		assets.AssertNotCalled(t, "MarkReturned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("shared asset stays assigned while other episode open", func(t *testing.T) {
		assets := new(MockAssetCollection)
		employees := new(MockEmployeeCollection)
		assignments := new(MockAssignmentCollection)
		pub := &recordingPublisher{}
		c := testCoordinator(assets, employees, assignments, new(MockCategoryCollection), pub, now)

		rec := openRecord()
		assignments.On("FindAssignmentByID", mock.Anything, rec.ID).Return(rec, nil)
		assignments.On("CloseAssignment", mock.Anything, rec.ID, now, "good", "").Return(true, nil)
		assignments.On("CountOpenForAsset", mock.Anything, rec.AssetID).Return(int64(1), nil)
		assets.On("MarkReturned", mock.Anything, rec.AssetID, mock.Anything, int64(1)).Return(true, nil)
		assignments.On("CountOpenForEmployee", mock.Anything, rec.EmployeeID).Return(int64(0), nil)
		employees.On("RemoveAssignment", mock.Anything, rec.EmployeeID, mock.Anything, int64(0)).Return(nil)

		shared := availableAsset()
		shared.Status = models.AssetAssigned
		shared.HasActiveAssignment = true
		assets.On("FindAssetByID", mock.Anything, rec.AssetID).Return(shared, nil)

		result, err := c.Unassign(context.Background(), rec.ID, models.UnassignOptions{})
		require.NoError(t, err)
		assert.True(t, result.HasActiveAssignment)

		assets.AssertExpectations(t)
		assignments.AssertExpectations(t)
	})

	t.Run("assignment not found", func(t *testing.T) {
		assignments := new(MockAssignmentCollection)
		c := testCoordinator(new(MockAssetCollection), new(MockEmployeeCollection), assignments, new(MockCategoryCollection), events.NoopPublisher{}, now)

		assignments.On("FindAssignmentByID", mock.Anything, "ASG-missing").Return(nil, db.ErrNotFound)

		_, err := c.Unassign(context.Background(), "ASG-missing", models.UnassignOptions{})
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})
}

func TestResolveExpectedReturn(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		opts    models.AssignOptions
		want    time.Time
		wantErr bool
	}{
		{"default one year", models.AssignOptions{}, now.AddDate(0, 0, 365), false},
		{"duration in days", models.AssignOptions{DurationValue: 10, DurationUnit: "days"}, now.AddDate(0, 0, 10), false},
		{"duration in weeks", models.AssignOptions{DurationValue: 2, DurationUnit: "weeks"}, now.AddDate(0, 0, 14), false},
		{"duration in months", models.AssignOptions{DurationValue: 3, DurationUnit: "months"}, now.AddDate(0, 0, 90), false},
		{"duration in years", models.AssignOptions{DurationValue: 1, DurationUnit: "year"}, now.AddDate(0, 0, 365), false},
		{"blank unit defaults to days", models.AssignOptions{DurationValue: 5}, now.AddDate(0, 0, 5), false},
		{"explicit date", models.AssignOptions{ExpectedReturnDate: "2025-06-01"}, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"duration wins over date", models.AssignOptions{DurationValue: 7, DurationUnit: "days", ExpectedReturnDate: "2026-01-01"}, now.AddDate(0, 0, 7), false},
		{"bad unit", models.AssignOptions{DurationValue: 1, DurationUnit: "decade"}, time.Time{}, true},
		{"bad date", models.AssignOptions{ExpectedReturnDate: "not-a-date"}, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveExpectedReturn(tt.opts, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}
