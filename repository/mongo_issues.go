package repository

import (
	"context"
	"regexp"
	"time"

	"civicfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

type mongoIssues struct {
	coll *mongo.Collection
}

func (r *mongoIssues) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID == "" {
		issue.ID = newID()
	}
	_, err := r.coll.InsertOne(ctx, issue)
	return translate(err)
}

func (r *mongoIssues) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "deletedAt": notDeleted}).Decode(&issue)
	if err != nil {
		return nil, translate(err)
	}
	return &issue, nil
}

func issueQuery(filter IssueFilter) bson.M {
	query := bson.M{"deletedAt": notDeleted}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.CategoryID != "" {
		query["categoryId"] = filter.CategoryID
	}
	if filter.ReporterID != "" {
		query["reportedBy"] = filter.ReporterID
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": filter.Tags}
	}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"location.address": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return query
}

func issueSortDoc(order IssueSort) bson.D {
	direction := 1
	if order.Descending {
		direction = -1
	}
	key := string(order.Field)
	switch order.Field {
	case SortUpvotes, SortViews, SortComments:
	case SortLocation:
		key = "location.address"
	default:
		key = string(SortCreatedAt)
	}
	return bson.D{{Key: key, Value: direction}, {Key: "_id", Value: 1}}
}

func (r *mongoIssues) Find(ctx context.Context, filter IssueFilter, order IssueSort, skip, limit int64) ([]models.Issue, int64, error) {
	query := issueQuery(filter)

	var (
		total  int64
		issues []models.Issue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.coll.CountDocuments(gctx, query)
		total = n
		return err
	})
	g.Go(func() error {
		findOptions := options.Find().
			SetSort(issueSortDoc(order)).
			SetSkip(skip).
			SetLimit(limit)

		cursor, err := r.coll.Find(gctx, query, findOptions)
		if err != nil {
			return err
		}
		defer cursor.Close(gctx)
		return cursor.All(gctx, &issues)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	return issues, total, nil
}

func (r *mongoIssues) Update(ctx context.Context, id string, update IssueUpdate) (*models.Issue, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Priority != nil {
		set["priority"] = *update.Priority
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.Images != nil {
		set["images"] = *update.Images
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "deletedAt": notDeleted}, bson.M{"$set": set})
}

func (r *mongoIssues) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "deletedAt": notDeleted},
		bson.M{"$set": bson.M{"deletedAt": at, "updatedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoIssues) UpdateStatus(ctx context.Context, id string, from, to models.IssueStatus, resolvedAt *time.Time) (*models.Issue, error) {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	if resolvedAt != nil {
		set["resolvedAt"] = *resolvedAt
	}
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from, "deletedAt": notDeleted},
		bson.M{"$set": set},
	)
}

func (r *mongoIssues) IncrementCounters(ctx context.Context, id string, delta CounterDelta) (*models.Issue, error) {
	inc := bson.M{}
	if delta.Upvotes != 0 {
		inc["upvotesCount"] = delta.Upvotes
	}
	if delta.Downvotes != 0 {
		inc["downvotesCount"] = delta.Downvotes
	}
	if delta.Comments != 0 {
		inc["commentsCount"] = delta.Comments
	}
	if delta.Views != 0 {
		inc["viewsCount"] = delta.Views
	}
	if len(inc) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id, "deletedAt": notDeleted}, bson.M{"$inc": inc})
}

func (r *mongoIssues) SetVoteCounts(ctx context.Context, id string, upvotes, downvotes int64) (*models.Issue, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "deletedAt": notDeleted},
		bson.M{"$set": bson.M{"upvotesCount": upvotes, "downvotesCount": downvotes}},
	)
}

func (r *mongoIssues) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Issue, error) {
	var issue models.Issue
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&issue); err != nil {
		return nil, translate(err)
	}
	return &issue, nil
}

func (r *mongoIssues) CountByStatus(ctx context.Context) (map[models.IssueStatus]int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"deletedAt": notDeleted}},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.IssueStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[models.IssueStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
