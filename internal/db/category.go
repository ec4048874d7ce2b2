package db

import (
	"context"
	"time"

	"github.com/uydev/asset-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryCollection defines the interface for asset categories.
type CategoryCollection interface {
	InsertCategory(ctx context.Context, category models.Category) error
	FindCategoryByID(ctx context.Context, id string) (*models.Category, error)
	FindCategories(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id string, set bson.M) error
	DeleteCategory(ctx context.Context, id string) error
}

// MongoCategoryCollection implements CategoryCollection for MongoDB.
type MongoCategoryCollection struct {
	Collection *mongo.Collection
}

func (c *MongoCategoryCollection) InsertCategory(ctx context.Context, category models.Category) error {
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, category)
	return err
}

func (c *MongoCategoryCollection) FindCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (c *MongoCategoryCollection) FindCategories(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Category, error) {
	cursor, err := c.Collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *MongoCategoryCollection) UpdateCategory(ctx context.Context, id string, set bson.M) error {
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

func (c *MongoCategoryCollection) DeleteCategory(ctx context.Context, id string) error {
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
