package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"civicfix-be/events"
	"civicfix-be/models"
	"civicfix-be/repository"
)

func newTestLedger(store *repository.Store) *VoteLedger {
	return NewVoteLedger(store, events.NewInMemoryDispatcher(nil), nil, 5)
}

func seedIssue(t *testing.T, store *repository.Store, mutate func(*models.Issue)) *models.Issue {
	t.Helper()
	now := time.Now()
	issue := &models.Issue{
		Title:       "Broken streetlight",
		Description: "The light on the corner is out",
		Location:    models.Location{Address: "1 Main St"},
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		Tags:        []string{},
		Images:      []string{},
		ReporterID:  "reporter",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if mutate != nil {
		mutate(issue)
	}
	if err := store.Issues.Create(context.Background(), issue); err != nil {
		t.Fatalf("seed issue: %v", err)
	}
	return issue
}

var userSeq atomic.Int64

func seedUser(t *testing.T, store *repository.Store, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:  fmt.Sprintf("%s-%d@example.com", role, userSeq.Add(1)),
		Name:   string(role),
		Role:   role,
		Status: models.UserActive,
	}
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}
