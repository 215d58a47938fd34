package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grumbler/schemas"
	"grumbler/storage"
)

type UsersStorage struct {
	usersCollection *mongo.Collection
}

func NewStorage(ctx context.Context, mongoUrl, dbName string) *UsersStorage {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoUrl))
	if err != nil {
		panic(fmt.Sprintf("connect to mongo failed: %s", err))
	}

	usersCollection := mongoClient.Database(dbName).Collection("users")
	err = ensureIndexes(ctx, usersCollection)
	if err != nil {
		panic(fmt.Sprintf("failed ensure index: %s", err))
	}

	return &UsersStorage{usersCollection: usersCollection}
}

func ensureIndexes(ctx context.Context, collection *mongo.Collection) error {
	unique := true
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "authId", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	})
	return err
}

func (s *UsersStorage) InsertUser(ctx context.Context, user *schemas.User) error {
	_, err := s.usersCollection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user %s", storage.ErrCollision, user.AuthID)
		}
		return fmt.Errorf("%w: user insertion failed: %s", storage.StorageError, err.Error())
	}
	return nil
}

func (s *UsersStorage) FindUser(ctx context.Context, authId schemas.AuthID) (*schemas.User, error) {
	var user schemas.User
	err := s.usersCollection.FindOne(ctx, bson.M{"authId": string(authId)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", storage.ErrNotFound, authId)
		}
		return nil, fmt.Errorf("%w: user lookup failed: %s", storage.StorageError, err.Error())
	}
	return &user, nil
}

func (s *UsersStorage) UpdateUserName(ctx context.Context, authId schemas.AuthID, name string) (*schemas.User, error) {
	mongoSelector := bson.M{"authId": string(authId)}
	mongoCommand := bson.D{{Key: "$set", Value: bson.D{{Key: "name", Value: name}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	result := s.usersCollection.FindOneAndUpdate(ctx, mongoSelector, mongoCommand, opts)

	var updatedUser schemas.User
	err := result.Decode(&updatedUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", storage.ErrNotFound, authId)
		}
		return nil, fmt.Errorf("%w: user update failed: %s", storage.StorageError, err.Error())
	}
	return &updatedUser, nil
}

func (s *UsersStorage) DeleteUser(ctx context.Context, authId schemas.AuthID) error {
	result := s.usersCollection.FindOneAndDelete(ctx, bson.M{"authId": string(authId)})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: user %s", storage.ErrNotFound, authId)
		}
		return fmt.Errorf("%w: user delete failed: %s", storage.StorageError, err.Error())
	}
	return nil
}

func (s *UsersStorage) CountUsers(ctx context.Context) (int, error) {
	count, err := s.usersCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: user count failed: %s", storage.StorageError, err.Error())
	}
	return int(count), nil
}
