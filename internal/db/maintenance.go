package db

import (
	"context"
	"time"

	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaintenanceCollection defines the interface for the maintenance history.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, rec models.MaintenanceRecord) error
	FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error)
	FindMaintenanceRecords(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.MaintenanceRecord, error)

	// CompleteMaintenance marks an open record completed. Returns false when
	// the record does not exist or is already terminal.
	CompleteMaintenance(ctx context.Context, rec models.MaintenanceRecord) (bool, error)

	// DeleteMaintenance removes a record (compensation only).
	DeleteMaintenance(ctx context.Context, id string) error

	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error)
}

// MongoMaintenanceCollection implements MaintenanceCollection for MongoDB.
type MongoMaintenanceCollection struct {
	Collection *mongo.Collection
}

func (c *MongoMaintenanceCollection) InsertMaintenance(ctx context.Context, rec models.MaintenanceRecord) error {
	_, err := c.Collection.InsertOne(ctx, rec)
	return err
}

func (c *MongoMaintenanceCollection) FindMaintenanceByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	var rec models.MaintenanceRecord
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (c *MongoMaintenanceCollection) FindMaintenanceRecords(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.MaintenanceRecord, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.MaintenanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *MongoMaintenanceCollection) CompleteMaintenance(ctx context.Context, rec models.MaintenanceRecord) (bool, error) {
	filter := bson.M{
		"_id":    rec.ID,
		"status": bson.M{"$in": []models.MaintenanceStatus{models.MaintenanceRequested, models.MaintenanceInProgress}},
	}
	set := bson.M{
		"status":          models.MaintenanceCompleted,
		"completed_date":  rec.CompletedDate,
		"condition_after": rec.ConditionAfter,
		"cost":            rec.Cost,
		"updated_at":      time.Now(),
	}
	if rec.NextScheduledMaintenance != nil {
		set["next_scheduled_maintenance"] = rec.NextScheduledMaintenance
	}
	result, err := c.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (c *MongoMaintenanceCollection) DeleteMaintenance(ctx context.Context, id string) error {
	_, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (c *MongoMaintenanceCollection) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	return aggregate(ctx, c.Collection, pipeline)
}
