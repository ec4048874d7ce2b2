package db

import (
	"context"
	"time"

	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RequestCollection defines the interface for approval requests.
type RequestCollection interface {
	InsertRequest(ctx context.Context, request models.Request) error
	FindRequestByID(ctx context.Context, id string) (*models.Request, error)
	FindRequests(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Request, error)
	UpdateRequest(ctx context.Context, id string, set bson.M) error
}

// MongoRequestCollection implements RequestCollection for MongoDB.
type MongoRequestCollection struct {
	Collection *mongo.Collection
}

func (c *MongoRequestCollection) InsertRequest(ctx context.Context, request models.Request) error {
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, request)
	return err
}

func (c *MongoRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.Request, error) {
	var request models.Request
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (c *MongoRequestCollection) FindRequests(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Request, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *MongoRequestCollection) UpdateRequest(ctx context.Context, id string, set bson.M) error {
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
