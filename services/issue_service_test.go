package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestIssueService(store *repository.Store, views *ViewTracker) *IssueService {
	return NewIssueService(IssueDependencies{
		Store:  store,
		Ledger: newTestLedger(store),
		Views:  views,
	})
}

func TestCreateIssueDefaults(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newTestIssueService(store, nil)

	issue, err := svc.Create(context.Background(), "reporter", CreateIssueInput{
		Title:       "  Pothole  ",
		Description: "Deep pothole",
		Location:    models.Location{Address: "5th Ave"},
		Tags:        []string{"roads,safety", "roads"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if issue.ID == "" || issue.Title != "Pothole" {
		t.Fatalf("unexpected issue %+v", issue)
	}
	if issue.Status != models.StatusPending || issue.Priority != models.PriorityMedium {
		t.Fatalf("expected pending/medium, got %s/%s", issue.Status, issue.Priority)
	}
	if len(issue.Tags) != 2 || issue.Images == nil {
		t.Fatalf("unexpected tags %v images %v", issue.Tags, issue.Images)
	}
}

func TestCreateIssueValidation(t *testing.T) {
	svc := newTestIssueService(repository.NewMemoryStore(), nil)
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'x'
	}

	inputs := []CreateIssueInput{
		{Description: "d", Location: models.Location{Address: "a"}},
		{Title: string(long), Description: "d", Location: models.Location{Address: "a"}},
		{Title: "t", Location: models.Location{Address: "a"}},
		{Title: "t", Description: "d"},
		{Title: "t", Description: "d", Location: models.Location{Address: "a"}, Priority: "urgent"},
	}
	for i, input := range inputs {
		if _, err := svc.Create(context.Background(), "r", input); !utils.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("input %d: expected validation error, got %v", i, err)
		}
	}
}

func TestGetCountsViewsAndVote(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestIssueService(store, nil)
	issue := seedIssue(t, store, nil)
	_, _ = svc.ledger.Cast(ctx, "viewer", issue.ID, models.Downvote)

	first, err := svc.Get(ctx, issue.ID, "viewer", "viewer")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, _ := svc.Get(ctx, issue.ID, "", "203.0.113.9")
	if first.ViewsCount != 1 || second.ViewsCount != 2 {
		t.Fatalf("expected views 1 then 2, got %d then %d", first.ViewsCount, second.ViewsCount)
	}
	if first.CurrentUserVote != models.VoteStateDownvote || second.CurrentUserVote != models.VoteStateNone {
		t.Fatalf("unexpected vote states %s, %s", first.CurrentUserVote, second.CurrentUserVote)
	}

	if _, err := svc.Get(ctx, "missing", "", ""); !utils.IsCode(err, "NOT_FOUND") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetDedupesViewsWithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := repository.NewMemoryStore()
	svc := newTestIssueService(store, NewViewTracker(client, time.Minute, nil))
	issue := seedIssue(t, store, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.Get(ctx, issue.ID, "u1", "u1"); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	got, _ := svc.Get(ctx, issue.ID, "u2", "u2")
	if got.ViewsCount != 2 {
		t.Fatalf("expected 2 distinct views, got %d", got.ViewsCount)
	}

	mr.FastForward(2 * time.Minute)
	got, _ = svc.Get(ctx, issue.ID, "u1", "u1")
	if got.ViewsCount != 3 {
		t.Fatalf("expected view to count again after the window, got %d", got.ViewsCount)
	}
}

func TestUpdateAndDeleteRequireOwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestIssueService(store, nil)
	owner := seedUser(t, store, models.RoleCitizen)
	stranger := seedUser(t, store, models.RoleCitizen)
	moderator := seedUser(t, store, models.RoleModerator)
	admin := seedUser(t, store, models.RoleAdmin)
	issue := seedIssue(t, store, func(i *models.Issue) { i.ReporterID = owner.ID })

	title := "Updated title"
	for _, actor := range []*models.User{stranger, moderator} {
		if _, err := svc.Update(ctx, actor, issue.ID, repository.IssueUpdate{Title: &title}); !utils.IsCode(err, "FORBIDDEN") {
			t.Fatalf("%s: expected forbidden, got %v", actor.Role, err)
		}
	}
	updated, err := svc.Update(ctx, owner, issue.ID, repository.IssueUpdate{Title: &title})
	if err != nil || updated.Title != title {
		t.Fatalf("owner update failed: %v %+v", err, updated)
	}

	bad := models.IssuePriority("urgent")
	if _, err := svc.Update(ctx, admin, issue.ID, repository.IssueUpdate{Priority: &bad}); !utils.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := svc.Delete(ctx, stranger, issue.ID); !utils.IsCode(err, "FORBIDDEN") {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := svc.Delete(ctx, admin, issue.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.Get(ctx, issue.ID, "", ""); !utils.IsCode(err, "NOT_FOUND") {
		t.Fatalf("deleted issue should be gone, got %v", err)
	}
}

func TestDeleteKeepsVotes(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestIssueService(store, nil)
	owner := seedUser(t, store, models.RoleCitizen)
	issue := seedIssue(t, store, func(i *models.Issue) { i.ReporterID = owner.ID })
	_, _ = svc.ledger.Cast(ctx, "voter", issue.ID, models.Upvote)

	if err := svc.Delete(ctx, owner, issue.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, _ := store.Votes.Count(ctx); n != 1 {
		t.Fatalf("expected vote to be retained, got %d", n)
	}
	if _, err := svc.ledger.Cast(ctx, "voter", issue.ID, models.Upvote); !utils.IsCode(err, "NOT_FOUND") {
		t.Fatalf("voting on a deleted issue should be not found, got %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestIssueService(store, nil)

	seedIssue(t, store, func(i *models.Issue) { i.UpvotesCount = 2 })
	seedIssue(t, store, func(i *models.Issue) { i.Status = models.StatusInProgress; i.UpvotesCount = 8 })
	seedIssue(t, store, func(i *models.Issue) { i.Status = models.StatusResolved; i.UpvotesCount = 5 })
	_, _ = svc.ledger.Cast(ctx, "voter", seedIssue(t, store, nil).ID, models.Upvote)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 || stats.Open != 3 || stats.ByStatus[models.StatusResolved] != 1 || stats.ByStatus[models.StatusRejected] != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.TotalVotes != 1 {
		t.Fatalf("expected 1 vote, got %d", stats.TotalVotes)
	}
	if len(stats.TopVoted) != 4 || stats.TopVoted[0].UpvotesCount != 8 {
		t.Fatalf("unexpected top voted %+v", stats.TopVoted)
	}
}

func TestGetIssueReporterSummary(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestIssueService(store, nil)
	reporter := seedUser(t, store, models.RoleCitizen)

	public := seedIssue(t, store, func(i *models.Issue) { i.ReporterID = reporter.ID })
	view, err := svc.Get(ctx, public.ID, "", "ip:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.ReportedBy != reporter.ID || view.Reporter == nil || view.Reporter.Name != reporter.Name {
		t.Fatalf("expected reporter summary, got %+v / %+v", view.ReportedBy, view.Reporter)
	}

	hidden := seedIssue(t, store, func(i *models.Issue) {
		i.ReporterID = reporter.ID
		i.IsAnonymous = true
	})
	view, err = svc.Get(ctx, hidden.ID, "someone-else", "someone-else")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.ReportedBy != "" || view.Reporter != nil {
		t.Fatalf("anonymous report leaked its reporter: %+v", view)
	}
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	if _, ok := fields["reportedBy"]; ok {
		t.Fatalf("reportedBy present in anonymous JSON: %s", raw)
	}
	if _, ok := fields["reporter"]; ok {
		t.Fatalf("reporter present in anonymous JSON: %s", raw)
	}

	own, err := svc.Get(ctx, hidden.ID, reporter.ID, reporter.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if own.ReportedBy != reporter.ID || own.Reporter == nil {
		t.Fatalf("reporter should see their own anonymous report, got %+v", own)
	}
}

func TestListHidesAnonymousReporters(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	reporter := seedUser(t, store, models.RoleCitizen)
	seedIssue(t, store, func(i *models.Issue) { i.ReporterID = reporter.ID })
	seedIssue(t, store, func(i *models.Issue) {
		i.ReporterID = reporter.ID
		i.IsAnonymous = true
	})

	page, err := NewIssueQuery(store.Issues, store.Users, newTestLedger(store)).List(ctx, ListQuery{Page: 1, Limit: 10}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var shown, hidden int
	for _, issue := range page.Issues {
		switch {
		case issue.IsAnonymous && issue.Reporter == nil && issue.ReportedBy == "":
			hidden++
		case !issue.IsAnonymous && issue.Reporter != nil && issue.Reporter.ID == reporter.ID:
			shown++
		}
	}
	if shown != 1 || hidden != 1 {
		t.Fatalf("expected one public and one hidden reporter, got %d/%d", shown, hidden)
	}
}
