package controllers

import (
	"net/http"

	"civicfix-be/middlewares"
	"civicfix-be/models"
	"civicfix-be/repository"
	"civicfix-be/services"
	"civicfix-be/utils"

	"github.com/gin-gonic/gin"
)

type IssueController struct {
	issues   *services.IssueService
	query    *services.IssueQuery
	ledger   *services.VoteLedger
	workflow *services.Workflow
}

func NewIssueController(issues *services.IssueService, query *services.IssueQuery, ledger *services.VoteLedger, workflow *services.Workflow) *IssueController {
	return &IssueController{issues: issues, query: query, ledger: ledger, workflow: workflow}
}

type createIssueRequest struct {
	Title       string               `json:"title" binding:"required,max=255"`
	Description string               `json:"description" binding:"required"`
	Location    models.Location      `json:"location"`
	Priority    models.IssuePriority `json:"priority" binding:"omitempty,issuePriority"`
	CategoryID  string               `json:"categoryId"`
	Tags        []string             `json:"tags"`
	Images      []string             `json:"images" binding:"max=10"`
	IsAnonymous bool                 `json:"isAnonymous"`
}

type updateIssueRequest struct {
	Title       *string               `json:"title" binding:"omitempty,max=255"`
	Description *string               `json:"description"`
	Priority    *models.IssuePriority `json:"priority" binding:"omitempty,issuePriority"`
	Tags        *[]string             `json:"tags"`
	Images      *[]string             `json:"images"`
}

type statusRequest struct {
	Status models.IssueStatus `json:"status" binding:"required,issueStatus"`
}

type voteRequest struct {
	VoteType models.VoteType `json:"voteType" binding:"required,voteType"`
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middlewares.RespondError(c, utils.NewValidationError("Invalid request body", middlewares.ValidationDetails(err)))
		return false
	}
	return true
}

// List returns a filtered, sorted page of issues
func (ic *IssueController) List(c *gin.Context) {
	query, err := services.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	ic.respondPage(c, query)
}

// ListMine returns the caller's own reports
func (ic *IssueController) ListMine(c *gin.Context) {
	query, err := services.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	query.Filter.ReporterID = middlewares.CurrentUserID(c)
	ic.respondPage(c, query)
}

func (ic *IssueController) respondPage(c *gin.Context, query services.ListQuery) {
	page, err := ic.query.List(c.Request.Context(), query, middlewares.CurrentUserID(c))
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ic *IssueController) Stats(c *gin.Context) {
	stats, err := ic.issues.Stats(c.Request.Context())
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Get returns one issue with the caller's vote
func (ic *IssueController) Get(c *gin.Context) {
	viewerID := middlewares.CurrentUserID(c)
	viewerKey := viewerID
	if viewerKey == "" {
		viewerKey = "ip:" + c.ClientIP()
	}

	issue, err := ic.issues.Get(c.Request.Context(), c.Param("id"), viewerID, viewerKey)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Create handles the creation of a new issue
func (ic *IssueController) Create(c *gin.Context) {
	var input createIssueRequest
	if !bindJSON(c, &input) {
		return
	}

	issue, err := ic.issues.Create(c.Request.Context(), middlewares.CurrentUserID(c), services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Priority:    input.Priority,
		CategoryID:  input.CategoryID,
		Tags:        input.Tags,
		Images:      input.Images,
		IsAnonymous: input.IsAnonymous,
	})
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (ic *IssueController) Update(c *gin.Context) {
	var input updateIssueRequest
	if !bindJSON(c, &input) {
		return
	}

	issue, err := ic.issues.Update(c.Request.Context(), middlewares.CurrentUser(c), c.Param("id"), repository.IssueUpdate{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Tags:        input.Tags,
		Images:      input.Images,
	})
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (ic *IssueController) Delete(c *gin.Context) {
	if err := ic.issues.Delete(c.Request.Context(), middlewares.CurrentUser(c), c.Param("id")); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// UpdateStatus moves an issue through the moderation workflow
func (ic *IssueController) UpdateStatus(c *gin.Context) {
	var input statusRequest
	if !bindJSON(c, &input) {
		return
	}

	issue, err := ic.workflow.Transition(c.Request.Context(), middlewares.CurrentUser(c), c.Param("id"), input.Status)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// Vote toggles the caller's vote on an issue
func (ic *IssueController) Vote(c *gin.Context) {
	var input voteRequest
	if !bindJSON(c, &input) {
		return
	}

	tally, err := ic.ledger.Cast(c.Request.Context(), middlewares.CurrentUserID(c), c.Param("id"), input.VoteType)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

func (ic *IssueController) Recount(c *gin.Context) {
	tally, err := ic.ledger.Recount(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upvotesCount":   tally.UpvotesCount,
		"downvotesCount": tally.DownvotesCount,
	})
}
