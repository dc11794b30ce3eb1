package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	issuesCollection        = "issues"
	votesCollection         = "votes"
	commentsCollection      = "comments"
	usersCollection         = "users"
	notificationsCollection = "notifications"
)

// NewMongoStore returns a Store backed by the given database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Issues:        &mongoIssues{coll: db.Collection(issuesCollection)},
		Votes:         &mongoVotes{coll: db.Collection(votesCollection)},
		Comments:      &mongoComments{coll: db.Collection(commentsCollection)},
		Users:         &mongoUsers{coll: db.Collection(usersCollection)},
		Notifications: &mongoNotifications{coll: db.Collection(notificationsCollection)},
	}
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// (userId, issueId) index on votes backs the one-vote-per-user rule.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		votesCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "issueId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "issueId", Value: 1}, {Key: "voteType", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		issuesCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "reportedBy", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "issueId", Value: 1}, {Key: "parentId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, specs := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return err
		}
	}
	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrConflict
	}
	return err
}

var notDeleted = bson.M{"$exists": false}

func returnAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}
