package repository

import (
	"context"
	"sync"
	"time"

	"civicfix-be/models"
)

type voteKey struct {
	userID  string
	issueID string
}

type memoryVotes struct {
	mu    sync.RWMutex
	ids   *arena
	votes map[voteKey]*models.Vote
}

func newMemoryVotes(ids *arena) *memoryVotes {
	return &memoryVotes{ids: ids, votes: make(map[voteKey]*models.Vote)}
}

func (r *memoryVotes) FindOne(_ context.Context, userID, issueID string) (*models.Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vote, ok := r.votes[voteKey{userID, issueID}]
	if !ok {
		return nil, ErrNotFound
	}
	out := *vote
	return &out, nil
}

func (r *memoryVotes) Create(_ context.Context, vote *models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := voteKey{vote.UserID, vote.IssueID}
	if _, exists := r.votes[key]; exists {
		return ErrConflict
	}
	if vote.ID == "" {
		vote.ID = r.ids.id()
	}
	stored := *vote
	r.votes[key] = &stored
	return nil
}

func (r *memoryVotes) UpdateDirection(_ context.Context, vote *models.Vote, from models.VoteType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.votes[voteKey{vote.UserID, vote.IssueID}]
	if !ok || stored.ID != vote.ID || stored.Type != from {
		return ErrNotFound
	}
	stored.Type = vote.Type
	stored.UpdatedAt = time.Now()
	vote.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memoryVotes) Delete(_ context.Context, vote *models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := voteKey{vote.UserID, vote.IssueID}
	stored, ok := r.votes[key]
	if !ok || stored.ID != vote.ID || stored.Type != vote.Type {
		return ErrNotFound
	}
	delete(r.votes, key)
	return nil
}

func (r *memoryVotes) CountByIssue(_ context.Context, issueID string) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var up, down int64
	for key, vote := range r.votes {
		if key.issueID != issueID {
			continue
		}
		switch vote.Type {
		case models.Upvote:
			up++
		case models.Downvote:
			down++
		}
	}
	return up, down, nil
}

func (r *memoryVotes) FindForIssues(_ context.Context, userID string, issueIDs []string) (map[string]models.VoteType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.VoteType, len(issueIDs))
	for _, issueID := range issueIDs {
		if vote, ok := r.votes[voteKey{userID, issueID}]; ok {
			out[issueID] = vote.Type
		}
	}
	return out, nil
}

func (r *memoryVotes) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.votes)), nil
}
