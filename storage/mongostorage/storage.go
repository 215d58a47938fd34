package mongostorage

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

const collName = "posts"

type postsStorage struct {
	postsCollection *mongo.Collection
}

func NewStorage(ctx context.Context, mongoURL string, mongoName string) *postsStorage {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		panic(err)
	}

	postsCollection := client.Database(mongoName).Collection(collName)

	ensureIndexes(ctx, postsCollection)

	return &postsStorage{
		postsCollection: postsCollection,
	}
}

func ensureIndexes(ctx context.Context, collection *mongo.Collection) {
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created", Value: -1}}},
		{Keys: bson.D{{Key: "author.authId", Value: 1}, {Key: "created", Value: -1}}},
		{Keys: bson.D{{Key: "expiry", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		panic(fmt.Errorf("failed to ensure indexes %w", err))
	}
}

func (s *postsStorage) InsertPost(ctx context.Context, post *schemas.Post) error {
	_, err := s.postsCollection.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("%w: insertion failed: %s", storage.StorageError, err.Error())
	}
	return nil
}

func (s *postsStorage) GetPost(ctx context.Context, postId schemas.PostId) (*schemas.Post, error) {
	var post schemas.Post
	err := s.postsCollection.FindOne(ctx, bson.M{"_id": postId}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: post %s", storage.ErrNotFound, postId.ToBase64URL())
		}
		return nil, fmt.Errorf("%w: failed to extract: %s", storage.StorageError, err.Error())
	}
	return &post, nil
}

func mongoFilter(filter storage.PostFilter) bson.M {
	mf := bson.M{}
	if filter.AuthorID != "" {
		mf["author.authId"] = string(filter.AuthorID)
	}
	if filter.AliveAt != nil {
		mf["expiry"] = bson.M{"$gt": *filter.AliveAt}
	}
	return mf
}

func (s *postsStorage) FindPosts(ctx context.Context, filter storage.PostFilter, skip int, limit int) ([]*schemas.Post, error) {
	optionsSkip := int64(skip)
	optionsLimit := int64(limit)
	filterOptions := &options.FindOptions{
		Skip:  &optionsSkip,
		Limit: &optionsLimit,
		Sort:  bson.M{"created": -1},
	}
	cursor, err := s.postsCollection.Find(ctx, mongoFilter(filter), filterOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: search failed: %s", storage.StorageError, err.Error())
	}
	var postList []*schemas.Post
	if err = cursor.All(ctx, &postList); err != nil {
		return nil, fmt.Errorf("%w: posts mapping failed: %s", storage.StorageError, err.Error())
	}
	return postList, nil
}

func (s *postsStorage) CountPosts(ctx context.Context, filter storage.PostFilter) (int, error) {
	count, err := s.postsCollection.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("%w: count failed: %s", storage.StorageError, err.Error())
	}
	return int(count), nil
}

func (s *postsStorage) DeletePost(ctx context.Context, postId schemas.PostId) error {
	result := s.postsCollection.FindOneAndDelete(ctx, bson.M{"_id": postId})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: post %s", storage.ErrNotFound, postId.ToBase64URL())
		}
		return fmt.Errorf("%w: delete failed: %s", storage.StorageError, err.Error())
	}
	return nil
}

// UpdateAuthorName rewrites the embedded author snapshot on every post
// of one author. Runs from the rename-propagation worker; the version
// bump lets the cache see refreshed documents as fresher.
func (s *postsStorage) UpdateAuthorName(ctx context.Context, authorId schemas.AuthID, name string) error {
	mongoSelector := bson.M{"author.authId": string(authorId)}
	mongoCommand := bson.D{
		{Key: "$set", Value: bson.D{{Key: "author.name", Value: name}}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}
	_, err := s.postsCollection.UpdateMany(ctx, mongoSelector, mongoCommand)
	if err != nil {
		return fmt.Errorf("%w: author rename failed: %s", storage.StorageError, err.Error())
	}
	return nil
}
