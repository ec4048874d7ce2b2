package db

import (
	"context"
	"time"

	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EmployeeCollection defines the interface for employee directory operations.
type EmployeeCollection interface {
	InsertEmployee(ctx context.Context, employee models.Employee) error
	FindEmployeeByID(ctx context.Context, id string) (*models.Employee, error)
	FindEmployees(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Employee, error)
	UpdateEmployee(ctx context.Context, id string, set bson.M) error
	DeleteEmployee(ctx context.Context, id string) error

	// AddAssignment records a new open episode on the employee: any stale
	// snapshot for the same asset is pulled first, then the fresh snapshot
	// and the mirrored history entry are appended.
	AddAssignment(ctx context.Context, employeeID string, snap models.AssetSnapshot, rec models.AssignmentRecord) error

	// RemoveAssignment closes an episode on the employee. openCount is the
	// number of episodes still open for the employee after the close; the
	// denormalized counters are set from it rather than decremented, so a
	// repeated call cannot drive them negative.
	RemoveAssignment(ctx context.Context, employeeID string, rec models.AssignmentRecord, openCount int64) error
}

// MongoEmployeeCollection implements EmployeeCollection for MongoDB.
type MongoEmployeeCollection struct {
	Collection *mongo.Collection
}

func (c *MongoEmployeeCollection) InsertEmployee(ctx context.Context, employee models.Employee) error {
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = time.Now()
	if employee.CurrentAssets == nil {
		employee.CurrentAssets = []models.AssetSnapshot{}
	}
	if employee.AssignedAssetIDs == nil {
		employee.AssignedAssetIDs = []string{}
	}
	if employee.AssignmentHistory == nil {
		employee.AssignmentHistory = []models.AssignmentRecord{}
	}
	_, err := c.Collection.InsertOne(ctx, employee)
	return err
}

func (c *MongoEmployeeCollection) FindEmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	var employee models.Employee
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&employee)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

func (c *MongoEmployeeCollection) FindEmployees(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Employee, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var employees []models.Employee
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (c *MongoEmployeeCollection) UpdateEmployee(ctx context.Context, id string, set bson.M) error {
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

func (c *MongoEmployeeCollection) DeleteEmployee(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoEmployeeCollection) AddAssignment(ctx context.Context, employeeID string, snap models.AssetSnapshot, rec models.AssignmentRecord) error {
	// Two updates: $pull and $push on the same array cannot share one
	// update document. A failure between them can drop a stale snapshot
	// without appending the fresh one; the next unassign for the employee
	// recomputes the counters from open ledger entries and repairs the
	// drift.
	pull := bson.M{
		"$pull": bson.M{
			"current_assets":     bson.M{"asset_id": snap.AssetID},
			"assigned_asset_ids": snap.AssetID,
		},
	}
	if _, err := c.Collection.UpdateOne(ctx, bson.M{"_id": employeeID}, pull); err != nil {
		return err
	}

	push := bson.M{
		"$push": bson.M{
			"current_assets":     snap,
			"assigned_asset_ids": snap.AssetID,
			"assignment_history": rec,
		},
		"$set": bson.M{
			"has_assigned_assets": true,
			"updated_at":          time.Now(),
		},
		"$inc": bson.M{"current_assignments_count": 1},
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": employeeID}, push)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoEmployeeCollection) RemoveAssignment(ctx context.Context, employeeID string, rec models.AssignmentRecord, openCount int64) error {
	update := bson.M{
		"$pull": bson.M{
			"current_assets":     bson.M{"assignment_id": rec.ID},
			"assigned_asset_ids": rec.AssetID,
		},
		"$set": bson.M{
			"current_assignments_count": openCount,
			"has_assigned_assets":       openCount > 0,
			"updated_at":                time.Now(),
			"assignment_history.$[entry].status":          models.AssignmentReturned,
			"assignment_history.$[entry].return_date":     rec.ReturnDate,
			"assignment_history.$[entry].condition_after": rec.ConditionAfter,
			"assignment_history.$[entry].return_notes":    rec.ReturnNotes,
			"assignment_history.$[entry].updated_at":      time.Now(),
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"entry._id": rec.ID}},
	})
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": employeeID}, update, opts)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
