package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"

	"go.uber.org/zap"
)

const maxTitleLength = 255

// IssueService coordinates issue reporting, editing and reads.
type IssueService struct {
	issues repository.IssueRepository
	votes  repository.VoteRepository
	users  repository.UserRepository
	ledger *VoteLedger
	views  *ViewTracker
	logger *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	Store  *repository.Store
	Ledger *VoteLedger
	Views  *ViewTracker
	Logger *zap.Logger
}

func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues: deps.Store.Issues,
		votes:  deps.Store.Votes,
		users:  deps.Store.Users,
		ledger: deps.Ledger,
		views:  deps.Views,
		logger: logger,
	}
}

// CreateIssueInput describes a new report.
type CreateIssueInput struct {
	Title       string
	Description string
	Location    models.Location
	Priority    models.IssuePriority
	CategoryID  string
	Tags        []string
	Images      []string
	IsAnonymous bool
}

func validateTitle(title string) error {
	if title == "" {
		return utils.NewValidationError("Title is required", map[string]any{"field": "title"})
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return utils.NewValidationError("Title is too long", map[string]any{"field": "title", "max": maxTitleLength})
	}
	return nil
}

// Create files a report. Every issue starts pending.
func (s *IssueService) Create(ctx context.Context, reporterID string, input CreateIssueInput) (*models.Issue, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, utils.NewValidationError("Description is required", map[string]any{"field": "description"})
	}
	location := input.Location
	location.Address = strings.TrimSpace(location.Address)
	if location.Address == "" {
		return nil, utils.NewValidationError("Location is required", map[string]any{"field": "location"})
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, utils.NewValidationError("Invalid priority", map[string]any{"priority": priority})
	}

	tags := parseTags(input.Tags)
	if tags == nil {
		tags = []string{}
	}
	images := input.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now()
	issue := &models.Issue{
		Title:       title,
		Description: description,
		Location:    location,
		Status:      models.StatusPending,
		Priority:    priority,
		Tags:        tags,
		Images:      images,
		ReporterID:  reporterID,
		CategoryID:  strings.TrimSpace(input.CategoryID),
		IsAnonymous: input.IsAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, storeError(err, "Issue")
	}
	s.logger.Info("issue reported", zap.String("issue_id", issue.ID), zap.String("reporter_id", reporterID))
	return issue, nil
}

// Get returns an issue with the viewer's vote and records a view. viewerKey
// identifies the viewer for view de-duplication.
func (s *IssueService) Get(ctx context.Context, issueID, viewerID, viewerKey string) (*models.IssueWithVote, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "Issue")
	}

	if s.views.ShouldCount(ctx, issueID, viewerKey) {
		viewed, err := s.issues.IncrementCounters(ctx, issueID, repository.CounterDelta{Views: 1})
		if err != nil {
			s.logger.Warn("view count update failed", zap.String("issue_id", issueID), zap.Error(err))
		} else {
			issue = viewed
		}
	}

	state, err := s.ledger.State(ctx, viewerID, issueID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	reporters, err := findReporters(ctx, s.users, []models.Issue{*issue})
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	view := issueView(*issue, state, reporters, viewerID)
	return &view, nil
}

// loadOwned returns the issue if actor reported it or is an administrator.
func (s *IssueService) loadOwned(ctx context.Context, actor *models.User, issueID, verb string) (*models.Issue, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "Issue")
	}
	if actor == nil || (issue.ReporterID != actor.ID && !actor.Role.Admin()) {
		return nil, utils.NewForbidden("You are not authorized to " + verb + " this issue")
	}
	return issue, nil
}

func (s *IssueService) Update(ctx context.Context, actor *models.User, issueID string, update repository.IssueUpdate) (*models.Issue, error) {
	if _, err := s.loadOwned(ctx, actor, issueID, "update"); err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		update.Title = &title
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if description == "" {
			return nil, utils.NewValidationError("Description is required", map[string]any{"field": "description"})
		}
		update.Description = &description
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return nil, utils.NewValidationError("Invalid priority", map[string]any{"priority": *update.Priority})
	}
	if update.Tags != nil {
		tags := parseTags(*update.Tags)
		if tags == nil {
			tags = []string{}
		}
		update.Tags = &tags
	}

	updated, err := s.issues.Update(ctx, issueID, update)
	if err != nil {
		return nil, storeError(err, "Issue")
	}
	return updated, nil
}

// Delete soft-deletes an issue. Its votes and comments are kept.
func (s *IssueService) Delete(ctx context.Context, actor *models.User, issueID string) error {
	if _, err := s.loadOwned(ctx, actor, issueID, "delete"); err != nil {
		return err
	}
	if err := s.issues.SoftDelete(ctx, issueID, time.Now()); err != nil {
		return storeError(err, "Issue")
	}
	s.logger.Info("issue deleted", zap.String("issue_id", issueID), zap.String("actor_id", actor.ID))
	return nil
}

type IssueStats struct {
	Total      int64                        `json:"total"`
	Open       int64                        `json:"open"`
	ByStatus   map[models.IssueStatus]int64 `json:"byStatus"`
	TotalVotes int64                        `json:"totalVotes"`
	TopVoted   []models.Issue               `json:"topVoted"`
}

// Stats summarises the issue collection.
func (s *IssueService) Stats(ctx context.Context) (*IssueStats, error) {
	counts, err := s.issues.CountByStatus(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	stats := &IssueStats{ByStatus: make(map[models.IssueStatus]int64, len(models.IssueStatuses))}
	for _, status := range models.IssueStatuses {
		n := counts[status]
		stats.ByStatus[status] = n
		stats.Total += n
		if !status.Terminal() {
			stats.Open += n
		}
	}

	if stats.TotalVotes, err = s.votes.Count(ctx); err != nil {
		return nil, utils.NewInternalError(err)
	}

	top, _, err := s.issues.Find(ctx, repository.IssueFilter{},
		repository.IssueSort{Field: repository.SortUpvotes, Descending: true}, 0, 5)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	stats.TopVoted = top
	return stats, nil
}
