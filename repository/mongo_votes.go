package repository

import (
	"context"
	"time"

	"civicfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoVotes struct {
	coll *mongo.Collection
}

func (r *mongoVotes) FindOne(ctx context.Context, userID, issueID string) (*models.Vote, error) {
	var vote models.Vote
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID, "issueId": issueID}).Decode(&vote); err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

func (r *mongoVotes) Create(ctx context.Context, vote *models.Vote) error {
	if vote.ID == "" {
		vote.ID = newID()
	}
	_, err := r.coll.InsertOne(ctx, vote)
	return translate(err)
}

func (r *mongoVotes) UpdateDirection(ctx context.Context, vote *models.Vote, from models.VoteType) error {
	now := time.Now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": vote.ID, "voteType": from},
		bson.M{"$set": bson.M{"voteType": vote.Type, "updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	vote.UpdatedAt = now
	return nil
}

func (r *mongoVotes) Delete(ctx context.Context, vote *models.Vote) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": vote.ID, "voteType": vote.Type})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoVotes) CountByIssue(ctx context.Context, issueID string) (int64, int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"issueId": issueID}},
		{"$group": bson.M{"_id": "$voteType", "count": bson.M{"$sum": 1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Type  models.VoteType `bson:"_id"`
		Count int64           `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}

	var up, down int64
	for _, row := range rows {
		switch row.Type {
		case models.Upvote:
			up = row.Count
		case models.Downvote:
			down = row.Count
		}
	}
	return up, down, nil
}

func (r *mongoVotes) FindForIssues(ctx context.Context, userID string, issueIDs []string) (map[string]models.VoteType, error) {
	out := make(map[string]models.VoteType, len(issueIDs))
	if len(issueIDs) == 0 {
		return out, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID, "issueId": bson.M{"$in": issueIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var votes []models.Vote
	if err := cursor.All(ctx, &votes); err != nil {
		return nil, err
	}
	for _, v := range votes {
		out[v.IssueID] = v.Type
	}
	return out, nil
}

func (r *mongoVotes) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
