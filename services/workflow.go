package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"civicfix-be/events"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"
)

// CodeInvalidTransition marks a status change the workflow does not allow.
const CodeInvalidTransition = "INVALID_TRANSITION"

var allowedTransitions = map[models.IssueStatus][]models.IssueStatus{
	models.StatusPending:     {models.StatusUnderReview, models.StatusRejected, models.StatusDuplicate},
	models.StatusUnderReview: {models.StatusApproved, models.StatusRejected, models.StatusDuplicate},
	models.StatusApproved:    {models.StatusInProgress, models.StatusRejected, models.StatusDuplicate},
	models.StatusInProgress:  {models.StatusResolved, models.StatusRejected, models.StatusDuplicate},
	models.StatusResolved:    {},
	models.StatusRejected:    {},
	models.StatusDuplicate:   {},
}

// CanTransition reports whether the workflow allows moving from current to next.
func CanTransition(current, next models.IssueStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Workflow moves issues through the status state machine.
type Workflow struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

func NewWorkflow(issues repository.IssueRepository, dispatcher events.Dispatcher) *Workflow {
	return &Workflow{issues: issues, dispatcher: dispatcher, now: time.Now}
}

// Transition changes an issue's status on behalf of a staff member.
// Requesting the current status returns the issue unchanged.
func (w *Workflow) Transition(ctx context.Context, actor *models.User, issueID string, next models.IssueStatus) (*models.Issue, error) {
	if actor == nil || !actor.Role.Staff() {
		return nil, utils.NewForbidden("Only moderators and administrators can change issue status")
	}
	if !next.Valid() {
		return nil, utils.NewValidationError("Invalid status", map[string]any{
			"status":  next,
			"allowed": models.IssueStatuses,
		})
	}

	issue, err := w.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "Issue")
	}
	if issue.Status == next {
		return issue, nil
	}
	if !CanTransition(issue.Status, next) {
		return nil, utils.NewAppError(CodeInvalidTransition,
			fmt.Sprintf("Cannot change status from %s to %s", issue.Status, next),
			http.StatusBadRequest,
			map[string]any{"from": issue.Status, "to": next, "allowed": allowedTransitions[issue.Status]})
	}

	var resolvedAt *time.Time
	if next == models.StatusResolved && issue.ResolvedAt == nil {
		now := w.now()
		resolvedAt = &now
	}

	updated, err := w.issues.UpdateStatus(ctx, issue.ID, issue.Status, next, resolvedAt)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewConflict("Issue status changed concurrently, reload and retry", map[string]any{
			"issueId": issue.ID,
		})
	}
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	if w.dispatcher != nil {
		_ = w.dispatcher.Publish(ctx, events.New(events.EventIssueStatusChanged, issue.ID, actor.ID, events.IssueStatusChangedPayload{
			IssueTitle: issue.Title,
			ReporterID: issue.ReporterID,
			OldStatus:  issue.Status,
			NewStatus:  next,
		}))
	}
	return updated, nil
}
