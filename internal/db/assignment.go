package db

import (
	"context"
	"time"

	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssignmentCollection defines the interface for the assignment ledger.
// Ledger entries are created on assign, closed exactly once on unassign and
// never deleted, except as compensation for a failed assign.
type AssignmentCollection interface {
	InsertAssignment(ctx context.Context, rec models.AssignmentRecord) error
	FindAssignmentByID(ctx context.Context, id string) (*models.AssignmentRecord, error)
	FindAssignments(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.AssignmentRecord, error)
	CountOpenForAsset(ctx context.Context, assetID string) (int64, error)
	CountOpenForEmployee(ctx context.Context, employeeID string) (int64, error)

	// CloseAssignment sets the return fields on an open entry. The update is
	// conditional on return_date being unset, so an entry can be closed at
	// most once; a second close returns false.
	CloseAssignment(ctx context.Context, id string, returnDate time.Time, conditionAfter, notes string) (bool, error)

	// DeleteAssignment removes an entry (compensation only).
	DeleteAssignment(ctx context.Context, id string) error

	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error)
}

// MongoAssignmentCollection implements AssignmentCollection for MongoDB.
type MongoAssignmentCollection struct {
	Collection *mongo.Collection
}

func (c *MongoAssignmentCollection) InsertAssignment(ctx context.Context, rec models.AssignmentRecord) error {
	_, err := c.Collection.InsertOne(ctx, rec)
	return err
}

func (c *MongoAssignmentCollection) FindAssignmentByID(ctx context.Context, id string) (*models.AssignmentRecord, error) {
	var rec models.AssignmentRecord
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (c *MongoAssignmentCollection) FindAssignments(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.AssignmentRecord, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.AssignmentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *MongoAssignmentCollection) CountOpenForAsset(ctx context.Context, assetID string) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"asset_id": assetID, "return_date": nil})
}

func (c *MongoAssignmentCollection) CountOpenForEmployee(ctx context.Context, employeeID string) (int64, error) {
	return c.Collection.CountDocuments(ctx, bson.M{"employee_id": employeeID, "return_date": nil})
}

func (c *MongoAssignmentCollection) CloseAssignment(ctx context.Context, id string, returnDate time.Time, conditionAfter, notes string) (bool, error) {
	filter := bson.M{"_id": id, "return_date": nil}
	update := bson.M{
		"$set": bson.M{
			"status":          models.AssignmentReturned,
			"return_date":     returnDate,
			"condition_after": conditionAfter,
			"return_notes":    notes,
			"updated_at":      time.Now(),
		},
	}
	result, err := c.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (c *MongoAssignmentCollection) DeleteAssignment(ctx context.Context, id string) error {
	_, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (c *MongoAssignmentCollection) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	return aggregate(ctx, c.Collection, pipeline)
}
