package db

import (
	"context"
	"time"

	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssetCollection defines the interface for asset catalog operations.
type AssetCollection interface {
	InsertAsset(ctx context.Context, asset models.Asset) error
	FindAssetByID(ctx context.Context, id string) (*models.Asset, error)
	FindAssets(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Asset, error)
	UpdateAsset(ctx context.Context, id string, set bson.M) error
	DeleteAsset(ctx context.Context, id string) error
	CountAssets(ctx context.Context, filter bson.M) (int64, error)

	// MarkAssigned claims the asset for a new assignment episode. When
	// requireUnassigned is true the claim is conditional on
	// has_active_assignment being false, which makes concurrent assigns
	// on the same asset lose cleanly instead of racing. Returns false if
	// the condition did not match.
	MarkAssigned(ctx context.Context, assetID string, requireUnassigned bool, rec models.AssignmentRecord) (bool, error)

	// MarkReturned closes the mirrored history entry. openCount is the
	// number of episodes still open for the asset after the close; the
	// assignment fields are cleared and the asset set back to available
	// only when it reaches zero, so returning one episode of a shareable
	// asset cannot release the others. Returns false if the asset does not
	// exist.
	MarkReturned(ctx context.Context, assetID string, rec models.AssignmentRecord, openCount int64) (bool, error)

	// ReleaseAssignment undoes a MarkAssigned claim (compensation for a
	// failed assign saga): assignment fields are cleared and the mirrored
	// history entry is removed.
	ReleaseAssignment(ctx context.Context, assetID, assignmentID string) error

	// AppendMaintenance sets the asset status and appends the mirrored
	// maintenance entry.
	AppendMaintenance(ctx context.Context, assetID string, status models.AssetStatus, rec models.MaintenanceRecord) error

	// CompleteMaintenance restores the asset to service and updates the
	// mirrored maintenance entry in place. Returns false if the asset does
	// not exist.
	CompleteMaintenance(ctx context.Context, assetID string, rec models.MaintenanceRecord) (bool, error)

	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error)
}

// MongoAssetCollection implements AssetCollection for MongoDB.
type MongoAssetCollection struct {
	Collection *mongo.Collection
}

func (c *MongoAssetCollection) InsertAsset(ctx context.Context, asset models.Asset) error {
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = time.Now()
	if asset.AssignmentHistory == nil {
		asset.AssignmentHistory = []models.AssignmentRecord{}
	}
	if asset.MaintenanceHistory == nil {
		asset.MaintenanceHistory = []models.MaintenanceRecord{}
	}
	if asset.Documents == nil {
		asset.Documents = []models.Document{}
	}
	_, err := c.Collection.InsertOne(ctx, asset)
	return err
}

func (c *MongoAssetCollection) FindAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (c *MongoAssetCollection) FindAssets(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Asset, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []models.Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (c *MongoAssetCollection) UpdateAsset(ctx context.Context, id string, set bson.M) error {
	set["updated_at"] = time.Now()
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoAssetCollection) DeleteAsset(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoAssetCollection) CountAssets(ctx context.Context, filter bson.M) (int64, error) {
	return c.Collection.CountDocuments(ctx, filter)
}

func (c *MongoAssetCollection) MarkAssigned(ctx context.Context, assetID string, requireUnassigned bool, rec models.AssignmentRecord) (bool, error) {
	filter := bson.M{"_id": assetID}
	if requireUnassigned {
		filter["has_active_assignment"] = false
	}
	update := bson.M{
		"$set": bson.M{
			"status":                  models.AssetAssigned,
			"has_active_assignment":   true,
			"current_assignee_id":     rec.EmployeeID,
			"current_assignee_name":   rec.EmployeeName,
			"current_assignment_id":   rec.ID,
			"current_assignment_date": rec.AssignmentDate,
			"expected_return_date":    rec.ExpectedReturnDate,
			"updated_at":              time.Now(),
		},
		"$push": bson.M{"assignment_history": rec},
	}
	result, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (c *MongoAssetCollection) MarkReturned(ctx context.Context, assetID string, rec models.AssignmentRecord, openCount int64) (bool, error) {
	set := bson.M{
		"condition":  rec.ConditionAfter,
		"updated_at": time.Now(),
		"assignment_history.$[entry].status":          models.AssignmentReturned,
		"assignment_history.$[entry].return_date":     rec.ReturnDate,
		"assignment_history.$[entry].condition_after": rec.ConditionAfter,
		"assignment_history.$[entry].return_notes":    rec.ReturnNotes,
		"assignment_history.$[entry].updated_at":      time.Now(),
	}
	update := bson.M{"$set": set}
	if openCount == 0 {
		set["status"] = models.AssetAvailable
		set["has_active_assignment"] = false
		update["$unset"] = bson.M{
			"current_assignee_id":     "",
			"current_assignee_name":   "",
			"current_assignment_id":   "",
			"current_assignment_date": "",
			"expected_return_date":    "",
		}
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"entry._id": rec.ID}},
	})
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": assetID}, update, opts)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (c *MongoAssetCollection) ReleaseAssignment(ctx context.Context, assetID, assignmentID string) error {
	update := bson.M{
		"$set": bson.M{
			"status":                models.AssetAvailable,
			"has_active_assignment": false,
			"updated_at":            time.Now(),
		},
		"$unset": bson.M{
			"current_assignee_id":     "",
			"current_assignee_name":   "",
			"current_assignment_id":   "",
			"current_assignment_date": "",
			"expected_return_date":    "",
		},
		"$pull": bson.M{"assignment_history": bson.M{"_id": assignmentID}},
	}
	_, err := c.Collection.UpdateOne(ctx, bson.M{"_id": assetID}, update)
	return err
}

func (c *MongoAssetCollection) AppendMaintenance(ctx context.Context, assetID string, status models.AssetStatus, rec models.MaintenanceRecord) error {
	update := bson.M{
		"$set":  bson.M{"status": status, "updated_at": time.Now()},
		"$push": bson.M{"maintenance_history": rec},
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": assetID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoAssetCollection) CompleteMaintenance(ctx context.Context, assetID string, rec models.MaintenanceRecord) (bool, error) {
	set := bson.M{
		"status":         models.AssetAvailable,
		"is_operational": true,
		"updated_at":     time.Now(),
		"maintenance_history.$[entry].status":          models.MaintenanceCompleted,
		"maintenance_history.$[entry].completed_date":  rec.CompletedDate,
		"maintenance_history.$[entry].condition_after": rec.ConditionAfter,
		"maintenance_history.$[entry].cost":            rec.Cost,
		"maintenance_history.$[entry].updated_at":      time.Now(),
	}
	if rec.ConditionAfter != "" {
		set["condition"] = rec.ConditionAfter
	}
	if rec.NextScheduledMaintenance != nil {
		set["next_maintenance_date"] = rec.NextScheduledMaintenance
		set["maintenance_history.$[entry].next_scheduled_maintenance"] = rec.NextScheduledMaintenance
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"entry._id": rec.ID}},
	})
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": assetID}, bson.M{"$set": set}, opts)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (c *MongoAssetCollection) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	return aggregate(ctx, c.Collection, pipeline)
}
