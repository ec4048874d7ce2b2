package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uydev/asset-tracker/internal/models"
)

func testCollections(t *testing.T) *Collections {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := ConnectMongo(ctx, uri)
	if err != nil {
		t.Skipf("failed to connect to MongoDB: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	database := client.Database("test_asset_tracker")
	if err := database.Drop(context.Background()); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	return NewCollections(client, "test_asset_tracker")
}

func openAssignment(employeeID string) models.AssignmentRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.AssignmentRecord{
		ID:             models.NewAssignmentID(),
		AssetID:        models.NewAssetID(),
		AssetName:      "ThinkPad X1",
		EmployeeID:     employeeID,
		EmployeeName:   "Ada Walker",
		AssignmentDate: now,
		Status:         models.AssignmentActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMongoAssignmentCollection_CloseAssignment(t *testing.T) {
	colls := testCollections(t)
	ctx := context.Background()

	rec := openAssignment("EMP-test0001")
	require.NoError(t, colls.Assignments.InsertAssignment(ctx, rec))

	returnDate := time.Now().UTC().Truncate(time.Millisecond)
	closed, err := colls.Assignments.CloseAssignment(ctx, rec.ID, returnDate, "good", "done")
	require.NoError(t, err)
	assert.True(t, closed)

	found, err := colls.Assignments.FindAssignmentByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentReturned, found.Status)
	require.NotNil(t, found.ReturnDate)
	assert.Equal(t, "good", found.ConditionAfter)

	// A second close must not match: the entry is already returned.
	closed, err = colls.Assignments.CloseAssignment(ctx, rec.ID, returnDate, "poor", "again")
	require.NoError(t, err)
	assert.False(t, closed)

	found, err = colls.Assignments.FindAssignmentByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "good", found.ConditionAfter)
}

func TestMongoAssignmentCollection_CountOpenForEmployee(t *testing.T) {
	colls := testCollections(t)
	ctx := context.Background()

	first := openAssignment("EMP-test0002")
	second := openAssignment("EMP-test0002")
	other := openAssignment("EMP-test0003")
	require.NoError(t, colls.Assignments.InsertAssignment(ctx, first))
	require.NoError(t, colls.Assignments.InsertAssignment(ctx, second))
	require.NoError(t, colls.Assignments.InsertAssignment(ctx, other))

	count, err := colls.Assignments.CountOpenForEmployee(ctx, "EMP-test0002")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	closed, err := colls.Assignments.CloseAssignment(ctx, first.ID, time.Now(), "good", "")
	require.NoError(t, err)
	require.True(t, closed)

	count, err = colls.Assignments.CountOpenForEmployee(ctx, "EMP-test0002")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMongoAssetCollection_MarkAssigned(t *testing.T) {
	colls := testCollections(t)
	ctx := context.Background()

	asset := models.Asset{
		ID:            models.NewAssetID(),
		Name:          "ThinkPad X1",
		CategoryID:    models.NewCategoryID(),
		Status:        models.AssetAvailable,
		Condition:     "good",
		IsOperational: true,
	}
	require.NoError(t, colls.Assets.InsertAsset(ctx, asset))

	rec := openAssignment("EMP-test0004")
	rec.AssetID = asset.ID

	claimed, err := colls.Assets.MarkAssigned(ctx, asset.ID, true, rec)
	require.NoError(t, err)
	assert.True(t, claimed)

	found, err := colls.Assets.FindAssetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, found.HasActiveAssignment)
	assert.Equal(t, models.AssetAssigned, found.Status)
	assert.Equal(t, rec.ID, found.CurrentAssignmentID)
	require.Len(t, found.AssignmentHistory, 1)

	// A second conditional claim loses: the asset is already held.
	second := openAssignment("EMP-test0005")
	second.AssetID = asset.ID
	claimed, err = colls.Assets.MarkAssigned(ctx, asset.ID, true, second)
	require.NoError(t, err)
	assert.False(t, claimed)

	found, err = colls.Assets.FindAssetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.CurrentAssignmentID)
	assert.Len(t, found.AssignmentHistory, 1)
}

func TestMongoAssetCollection_MarkReturned(t *testing.T) {
	colls := testCollections(t)
	ctx := context.Background()

	asset := models.Asset{
		ID:            models.NewAssetID(),
		Name:          "IntelliJ License",
		CategoryID:    models.NewCategoryID(),
		Status:        models.AssetAvailable,
		IsOperational: true,
	}
	require.NoError(t, colls.Assets.InsertAsset(ctx, asset))

	first := openAssignment("EMP-test0007")
	first.AssetID = asset.ID
	second := openAssignment("EMP-test0008")
	second.AssetID = asset.ID
	claimed, err := colls.Assets.MarkAssigned(ctx, asset.ID, false, first)
	require.NoError(t, err)
	require.True(t, claimed)
	claimed, err = colls.Assets.MarkAssigned(ctx, asset.ID, false, second)
	require.NoError(t, err)
	require.True(t, claimed)

	returnDate := time.Now().UTC().Truncate(time.Millisecond)
	first.Status = models.AssignmentReturned
	first.ReturnDate = &returnDate
	first.ConditionAfter = "good"

	// One episode of a shared asset comes back while the other stays open:
	// the asset must remain assigned.
	matched, err := colls.Assets.MarkReturned(ctx, asset.ID, first, 1)
	require.NoError(t, err)
	assert.True(t, matched)

	found, err := colls.Assets.FindAssetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, found.HasActiveAssignment)
	assert.Equal(t, models.AssetAssigned, found.Status)
	require.Len(t, found.AssignmentHistory, 2)
	assert.Equal(t, models.AssignmentReturned, found.AssignmentHistory[0].Status)
	assert.Equal(t, models.AssignmentActive, found.AssignmentHistory[1].Status)

	second.Status = models.AssignmentReturned
	second.ReturnDate = &returnDate
	second.ConditionAfter = "good"

	// The last open episode closing releases the asset.
	matched, err = colls.Assets.MarkReturned(ctx, asset.ID, second, 0)
	require.NoError(t, err)
	assert.True(t, matched)

	found, err = colls.Assets.FindAssetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.False(t, found.HasActiveAssignment)
	assert.Equal(t, models.AssetAvailable, found.Status)
	assert.Empty(t, found.CurrentAssignmentID)
}

func TestMongoAssignmentCollection_CountOpenForAsset(t *testing.T) {
	colls := testCollections(t)
	ctx := context.Background()

	assetID := models.NewAssetID()
	first := openAssignment("EMP-test0009")
	first.AssetID = assetID
	second := openAssignment("EMP-test0010")
	second.AssetID = assetID
	require.NoError(t, colls.Assignments.InsertAssignment(ctx, first))
	require.NoError(t, colls.Assignments.InsertAssignment(ctx, second))

	count, err := colls.Assignments.CountOpenForAsset(ctx, assetID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	closed, err := colls.Assignments.CloseAssignment(ctx, first.ID, time.Now(), "good", "")
	require.NoError(t, err)
	require.True(t, closed)

	count, err = colls.Assignments.CountOpenForAsset(ctx, assetID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMongoAssetCollection_ReleaseAssignment(t *testing.T) {
	colls := testCollections(t)
	ctx := context.Background()

	asset := models.Asset{
		ID:            models.NewAssetID(),
		Name:          "ThinkPad X1",
		CategoryID:    models.NewCategoryID(),
		Status:        models.AssetAvailable,
		IsOperational: true,
	}
	require.NoError(t, colls.Assets.InsertAsset(ctx, asset))

	rec := openAssignment("EMP-test0006")
	rec.AssetID = asset.ID
	claimed, err := colls.Assets.MarkAssigned(ctx, asset.ID, true, rec)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, colls.Assets.ReleaseAssignment(ctx, asset.ID, rec.ID))

	found, err := colls.Assets.FindAssetByID(ctx, asset.ID)
	require.NoError(t, err)
	assert.False(t, found.HasActiveAssignment)
	assert.Equal(t, models.AssetAvailable, found.Status)
	assert.Empty(t, found.CurrentAssignmentID)
	assert.Len(t, found.AssignmentHistory, 0)
}
