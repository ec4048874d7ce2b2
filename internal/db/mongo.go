package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a document lookup or a conditional update
// matches nothing.
var ErrNotFound = errors.New("document not found")

// Collection names used by the service.
const (
	AssetsCollection             = "assets"
	EmployeesCollection          = "employees"
	AssignmentHistoryCollection  = "assignment_history"
	MaintenanceHistoryCollection = "maintenance_history"
	CategoriesCollection         = "categories"
	RequestsCollection           = "requests"
)

// ConnectMongo connects to MongoDB at the given URI and verifies the
// connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Collections bundles the per-entity collection handles for dependency
// injection into the services.
type Collections struct {
	Assets      AssetCollection
	Employees   EmployeeCollection
	Assignments AssignmentCollection
	Maintenance MaintenanceCollection
	Categories  CategoryCollection
	Requests    RequestCollection
}

// NewCollections builds the Mongo-backed collection set for a database.
func NewCollections(client *mongo.Client, dbName string) *Collections {
	database := client.Database(dbName)
	return &Collections{
		Assets:      &MongoAssetCollection{Collection: database.Collection(AssetsCollection)},
		Employees:   &MongoEmployeeCollection{Collection: database.Collection(EmployeesCollection)},
		Assignments: &MongoAssignmentCollection{Collection: database.Collection(AssignmentHistoryCollection)},
		Maintenance: &MongoMaintenanceCollection{Collection: database.Collection(MaintenanceHistoryCollection)},
		Categories:  &MongoCategoryCollection{Collection: database.Collection(CategoriesCollection)},
		Requests:    &MongoRequestCollection{Collection: database.Collection(RequestsCollection)},
	}
}

// aggregate runs a pipeline and decodes every result document.
func aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]bson.M, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
