package repository

import (
	"context"
	"errors"
	"testing"

	"civicfix-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoIssuesFindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := &mongoIssues{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "civicfix.issues", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "65a1b2c3d4e5f60718293a4b"},
			{Key: "title", Value: "Pothole"},
			{Key: "status", Value: "pending"},
			{Key: "upvotesCount", Value: int64(2)},
		}))

		issue, err := repo.FindByID(context.Background(), "65a1b2c3d4e5f60718293a4b")
		if err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if issue.Title != "Pothole" || issue.Status != models.StatusPending || issue.UpvotesCount != 2 {
			t.Fatalf("unexpected issue %+v", issue)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := &mongoIssues{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "civicfix.issues", mtest.FirstBatch))

		if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMongoVotesCreateDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := &mongoVotes{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.Create(context.Background(), &models.Vote{UserID: "u1", IssueID: "i1", Type: models.Upvote})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func TestMongoVotesDeleteStale(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("nothing deleted", func(mt *mtest.T) {
		repo := &mongoVotes{coll: mt.Coll}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		err := repo.Delete(context.Background(), &models.Vote{ID: "v1", Type: models.Upvote})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMongoVotesCountByIssue(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("aggregates by direction", func(mt *mtest.T) {
		repo := &mongoVotes{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "civicfix.votes", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "upvote"}, {Key: "count", Value: int64(3)}},
			bson.D{{Key: "_id", Value: "downvote"}, {Key: "count", Value: int64(1)}},
		))

		up, down, err := repo.CountByIssue(context.Background(), "i1")
		if err != nil {
			t.Fatalf("CountByIssue: %v", err)
		}
		if up != 3 || down != 1 {
			t.Fatalf("expected (3,1), got (%d,%d)", up, down)
		}
	})
}

func TestIssueSortDocBreaksTiesByID(t *testing.T) {
	doc := issueSortDoc(IssueSort{Field: SortLocation, Descending: true})
	if len(doc) != 2 || doc[0].Key != "location.address" || doc[0].Value != -1 || doc[1].Key != "_id" || doc[1].Value != 1 {
		t.Fatalf("unexpected sort doc %v", doc)
	}
	if doc := issueSortDoc(IssueSort{Field: "bogus"}); doc[0].Key != "createdAt" {
		t.Fatalf("unknown field should fall back to createdAt, got %v", doc)
	}
}

func TestIssueQueryEscapesSearch(t *testing.T) {
	query := issueQuery(IssueFilter{Search: "a.b(c"})
	or, ok := query["$or"].([]bson.M)
	if !ok || len(or) != 3 {
		t.Fatalf("expected three search clauses, got %v", query["$or"])
	}
	title := or[0]["title"].(bson.M)
	if title["$regex"] != `a\.b\(c` {
		t.Fatalf("search was not escaped: %v", title["$regex"])
	}
}

func TestMongoUsersFindByIDs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("keys by id", func(mt *mtest.T) {
		repo := &mongoUsers{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "civicfix.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u1"}, {Key: "name", Value: "Ada"}},
		))

		users, err := repo.FindByIDs(context.Background(), []string{"u1", "missing"})
		if err != nil {
			t.Fatalf("FindByIDs: %v", err)
		}
		if len(users) != 1 || users["u1"].Name != "Ada" {
			t.Fatalf("unexpected users %+v", users)
		}
	})

	mt.Run("no ids", func(mt *mtest.T) {
		repo := &mongoUsers{coll: mt.Coll}
		users, err := repo.FindByIDs(context.Background(), nil)
		if err != nil || len(users) != 0 {
			t.Fatalf("expected empty result, got %v %v", users, err)
		}
	})
}
