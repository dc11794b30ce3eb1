package services

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"strings"

	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"
)

const (
	defaultPageSize int64 = 10
	maxPageSize     int64 = 100
)

var sortFields = map[string]repository.SortField{
	"createdAt":     repository.SortCreatedAt,
	"upvotesCount":  repository.SortUpvotes,
	"viewsCount":    repository.SortViews,
	"commentsCount": repository.SortComments,
	"location":      repository.SortLocation,
}

// ListQuery is a parsed issue listing request.
type ListQuery struct {
	Filter repository.IssueFilter
	Sort   repository.IssueSort
	Page   int64
	Limit  int64
}

func (q ListQuery) skip() int64 {
	return pageOffset(q.Page, q.Limit)
}

// pageOffset is the number of rows before page. It saturates instead of
// overflowing so a huge page number reads past the end and comes back empty.
func pageOffset(page, limit int64) int64 {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return (page - 1) * limit
}

type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit, total int64) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}
}

type IssuePage struct {
	Issues     []models.IssueWithVote `json:"issues"`
	Pagination Pagination             `json:"pagination"`
}

// ParsePaging reads page and limit. Missing values default to page 1 and
// limit 10; limits above 100 are capped.
func ParsePaging(values url.Values) (page, limit int64, err error) {
	page, limit = 1, defaultPageSize

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || page < 1 {
			return 0, 0, utils.NewValidationError("page must be a positive integer", map[string]any{"page": raw})
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return 0, 0, utils.NewValidationError("limit must be a positive integer", map[string]any{"limit": raw})
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	return page, limit, nil
}

// ParseListQuery translates query string parameters into a ListQuery.
func ParseListQuery(values url.Values) (ListQuery, error) {
	var q ListQuery

	page, limit, err := ParsePaging(values)
	if err != nil {
		return q, err
	}
	q.Page, q.Limit = page, limit

	q.Sort.Field = repository.SortCreatedAt
	if raw := strings.TrimSpace(values.Get("sortBy")); raw != "" {
		field, ok := sortFields[raw]
		if !ok {
			return q, utils.NewValidationError("Invalid sortBy", map[string]any{"sortBy": raw})
		}
		q.Sort.Field = field
	}

	switch order := strings.ToLower(strings.TrimSpace(values.Get("sortOrder"))); order {
	case "", "desc":
		q.Sort.Descending = true
	case "asc":
		q.Sort.Descending = false
	default:
		return q, utils.NewValidationError("sortOrder must be asc or desc", map[string]any{"sortOrder": order})
	}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" && raw != "all" {
		status := models.IssueStatus(raw)
		if !status.Valid() {
			return q, utils.NewValidationError("Invalid status", map[string]any{"status": raw})
		}
		q.Filter.Status = status
	}
	if raw := strings.TrimSpace(values.Get("priority")); raw != "" && raw != "all" {
		priority := models.IssuePriority(raw)
		if !priority.Valid() {
			return q, utils.NewValidationError("Invalid priority", map[string]any{"priority": raw})
		}
		q.Filter.Priority = priority
	}
	if raw := strings.TrimSpace(values.Get("category")); raw != "" && raw != "all" {
		q.Filter.CategoryID = raw
	}

	q.Filter.Search = strings.TrimSpace(values.Get("search"))
	q.Filter.Tags = parseTags(values["tags"])
	return q, nil
}

// parseTags accepts both repeated and comma-separated tags.
func parseTags(raw []string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, value := range raw {
		for _, tag := range strings.Split(value, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

// IssueQuery runs listing requests against the issue store.
type IssueQuery struct {
	issues repository.IssueRepository
	users  repository.UserRepository
	ledger *VoteLedger
}

func NewIssueQuery(issues repository.IssueRepository, users repository.UserRepository, ledger *VoteLedger) *IssueQuery {
	return &IssueQuery{issues: issues, users: users, ledger: ledger}
}

// List returns one page of matching issues. When viewerID is set each issue
// carries that viewer's vote.
func (q *IssueQuery) List(ctx context.Context, query ListQuery, viewerID string) (*IssuePage, error) {
	issues, total, err := q.issues.Find(ctx, query.Filter, query.Sort, query.skip(), query.Limit)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	ids := make([]string, len(issues))
	for i := range issues {
		ids[i] = issues[i].ID
	}
	states, err := q.ledger.States(ctx, viewerID, ids)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	reporters, err := findReporters(ctx, q.users, issues)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}

	out := make([]models.IssueWithVote, len(issues))
	for i := range issues {
		out[i] = issueView(issues[i], states[issues[i].ID], reporters, viewerID)
	}
	return &IssuePage{
		Issues:     out,
		Pagination: newPagination(query.Page, query.Limit, total),
	}, nil
}

func findReporters(ctx context.Context, users repository.UserRepository, issues []models.Issue) (map[string]models.User, error) {
	seen := make(map[string]struct{}, len(issues))
	ids := make([]string, 0, len(issues))
	for i := range issues {
		id := issues[i].ReporterID
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return users.FindByIDs(ctx, ids)
}

// issueView hides the reporter of an anonymous issue from everyone but the
// reporter.
func issueView(issue models.Issue, vote models.VoteState, reporters map[string]models.User, viewerID string) models.IssueWithVote {
	view := models.IssueWithVote{Issue: issue, CurrentUserVote: vote}
	if issue.IsAnonymous && issue.ReporterID != viewerID {
		return view
	}
	view.ReportedBy = issue.ReporterID
	if user, ok := reporters[issue.ReporterID]; ok {
		view.Reporter = &models.ReporterSummary{ID: user.ID, Name: user.Name, Location: user.Location}
	}
	return view
}
