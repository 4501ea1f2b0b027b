// Package mongodb provides the user and business lookup collections.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skedy/escalation-service/internal/domain/models"
)

const (
	// UsersCollectionName is the name of the users collection.
	UsersCollectionName = "users"
	// BusinessesCollectionName is the name of the businesses collection.
	BusinessesCollectionName = "businesses"
)

// UsersCollection implements docdb.UsersCollection for MongoDB.
type UsersCollection struct {
	collection *mongo.Collection
}

// NewUsersCollection creates a new users collection wrapper.
func NewUsersCollection(db *mongo.Database) *UsersCollection {
	return &UsersCollection{collection: db.Collection(UsersCollectionName)}
}

// Get retrieves a user by ID.
func (c *UsersCollection) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := c.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// BusinessesCollection implements docdb.BusinessesCollection for MongoDB.
type BusinessesCollection struct {
	collection *mongo.Collection
}

// NewBusinessesCollection creates a new businesses collection wrapper.
func NewBusinessesCollection(db *mongo.Database) *BusinessesCollection {
	return &BusinessesCollection{collection: db.Collection(BusinessesCollectionName)}
}

// Get retrieves a business by ID.
func (c *BusinessesCollection) Get(ctx context.Context, id string) (*models.Business, error) {
	var business models.Business
	err := c.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&business)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return &business, nil
}
