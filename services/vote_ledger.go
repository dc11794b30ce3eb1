package services

import (
	"context"
	"errors"
	"time"

	"civicfix-be/events"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"

	"go.uber.org/zap"
)

const defaultVoteAttempts = 5

// VoteLedger records each user's vote on each issue and keeps the issue's
// vote counters equal to an aggregation of the ledger.
type VoteLedger struct {
	issues      repository.IssueRepository
	votes       repository.VoteRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	maxAttempts int
}

func NewVoteLedger(store *repository.Store, dispatcher events.Dispatcher, logger *zap.Logger, maxAttempts int) *VoteLedger {
	if maxAttempts <= 0 {
		maxAttempts = defaultVoteAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteLedger{
		issues:      store.Issues,
		votes:       store.Votes,
		dispatcher:  dispatcher,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

type voteAction int

const (
	voteCreate voteAction = iota
	voteRetract
	voteSwitch
)

// votePlan is the ledger write and counter adjustment for one cast.
type votePlan struct {
	action voteAction
	delta  repository.CounterDelta
	result models.VoteState
}

func counterDelta(direction models.VoteType, n int64) repository.CounterDelta {
	if direction == models.Upvote {
		return repository.CounterDelta{Upvotes: n}
	}
	return repository.CounterDelta{Downvotes: n}
}

// planVote decides what a cast does given the caller's current ledger entry.
func planVote(existing *models.Vote, requested models.VoteType) votePlan {
	switch {
	case existing == nil:
		return votePlan{
			action: voteCreate,
			delta:  counterDelta(requested, 1),
			result: models.VoteState(requested),
		}
	case existing.Type == requested:
		return votePlan{
			action: voteRetract,
			delta:  counterDelta(requested, -1),
			result: models.VoteStateNone,
		}
	default:
		delta := counterDelta(existing.Type, -1)
		add := counterDelta(requested, 1)
		delta.Upvotes += add.Upvotes
		delta.Downvotes += add.Downvotes
		return votePlan{
			action: voteSwitch,
			delta:  delta,
			result: models.VoteState(requested),
		}
	}
}

// Cast applies the tri-state toggle for userID on issueID: a first vote is
// recorded, repeating the same direction retracts it and the opposite
// direction switches it.
func (l *VoteLedger) Cast(ctx context.Context, userID, issueID string, direction models.VoteType) (*models.VoteTally, error) {
	if !direction.Valid() {
		return nil, utils.NewValidationError("Invalid vote type", map[string]any{
			"voteType": direction,
			"allowed":  []models.VoteType{models.Upvote, models.Downvote},
		})
	}

	issue, err := l.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "Issue")
	}

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		existing, err := l.votes.FindOne(ctx, userID, issueID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewInternalError(err)
		}

		plan := planVote(existing, direction)
		if err := l.write(ctx, plan, existing, userID, issueID, direction); err != nil {
			if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
				l.logger.Debug("vote ledger race, replanning",
					zap.String("issue_id", issueID),
					zap.String("user_id", userID),
					zap.Int("attempt", attempt))
				continue
			}
			return nil, utils.NewInternalError(err)
		}

		updated, err := l.issues.IncrementCounters(ctx, issueID, plan.delta)
		if err != nil {
			l.logger.Warn("vote counter update failed, recounting",
				zap.String("issue_id", issueID), zap.Error(err))
			updated, err = l.recount(ctx, issueID)
			if err != nil {
				return nil, storeError(err, "Issue")
			}
		}

		tally := &models.VoteTally{
			UpvotesCount:    updated.UpvotesCount,
			DownvotesCount:  updated.DownvotesCount,
			CurrentUserVote: plan.result,
		}
		if plan.result != models.VoteStateNone {
			l.publish(ctx, issue, userID, direction, tally)
		}
		return tally, nil
	}

	return nil, utils.NewConflict("Vote could not be applied due to concurrent updates, please retry", map[string]any{
		"issueId":  issueID,
		"attempts": l.maxAttempts,
	})
}

func (l *VoteLedger) write(ctx context.Context, plan votePlan, existing *models.Vote, userID, issueID string, direction models.VoteType) error {
	switch plan.action {
	case voteCreate:
		now := time.Now()
		return l.votes.Create(ctx, &models.Vote{
			IssueID:   issueID,
			UserID:    userID,
			Type:      direction,
			CreatedAt: now,
			UpdatedAt: now,
		})
	case voteRetract:
		return l.votes.Delete(ctx, existing)
	default:
		switched := *existing
		switched.Type = direction
		return l.votes.UpdateDirection(ctx, &switched, existing.Type)
	}
}

// Recount overwrites the issue's vote counters with an aggregation of the ledger.
func (l *VoteLedger) Recount(ctx context.Context, issueID string) (*models.VoteTally, error) {
	if _, err := l.issues.FindByID(ctx, issueID); err != nil {
		return nil, storeError(err, "Issue")
	}
	issue, err := l.recount(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "Issue")
	}
	return &models.VoteTally{
		UpvotesCount:    issue.UpvotesCount,
		DownvotesCount:  issue.DownvotesCount,
		CurrentUserVote: models.VoteStateNone,
	}, nil
}

func (l *VoteLedger) recount(ctx context.Context, issueID string) (*models.Issue, error) {
	up, down, err := l.votes.CountByIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	return l.issues.SetVoteCounts(ctx, issueID, up, down)
}

// State returns the caller's current vote on an issue.
func (l *VoteLedger) State(ctx context.Context, userID, issueID string) (models.VoteState, error) {
	if userID == "" {
		return models.VoteStateNone, nil
	}
	vote, err := l.votes.FindOne(ctx, userID, issueID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.VoteStateNone, nil
	}
	if err != nil {
		return models.VoteStateNone, err
	}
	return models.StateOf(vote), nil
}

// States returns the caller's vote for each issue, defaulting to none.
func (l *VoteLedger) States(ctx context.Context, userID string, issueIDs []string) (map[string]models.VoteState, error) {
	states := make(map[string]models.VoteState, len(issueIDs))
	for _, id := range issueIDs {
		states[id] = models.VoteStateNone
	}
	if userID == "" || len(issueIDs) == 0 {
		return states, nil
	}
	votes, err := l.votes.FindForIssues(ctx, userID, issueIDs)
	if err != nil {
		return nil, err
	}
	for id, direction := range votes {
		states[id] = models.VoteState(direction)
	}
	return states, nil
}

func (l *VoteLedger) publish(ctx context.Context, issue *models.Issue, userID string, direction models.VoteType, tally *models.VoteTally) {
	if l.dispatcher == nil {
		return
	}
	_ = l.dispatcher.Publish(ctx, events.New(events.EventIssueVoted, issue.ID, userID, events.IssueVotedPayload{
		IssueTitle:     issue.Title,
		ReporterID:     issue.ReporterID,
		VoteType:       direction,
		UpvotesCount:   tally.UpvotesCount,
		DownvotesCount: tally.DownvotesCount,
	}))
}
