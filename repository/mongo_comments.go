package repository

import (
	"context"

	"civicfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoComments struct {
	coll *mongo.Collection
}

func (r *mongoComments) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = newID()
	}
	_, err := r.coll.InsertOne(ctx, comment)
	return translate(err)
}

func (r *mongoComments) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *mongoComments) FindTopLevel(ctx context.Context, issueID string, skip, limit int64) ([]models.Comment, int64, error) {
	filter := bson.M{"issueId": issueID, "parentId": bson.M{"$exists": false}}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	comments, err := r.find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *mongoComments) FindReplies(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	if len(parentIDs) == 0 {
		return []models.Comment{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"parentId": bson.M{"$in": parentIDs}}, findOptions)
}

func (r *mongoComments) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
