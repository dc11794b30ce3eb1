package controllers

import (
	"net/http"

	"civicfix-be/middlewares"
	"civicfix-be/services"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

type commentRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parentId"`
}

func (cc *CommentController) List(c *gin.Context) {
	page, limit, err := services.ParsePaging(c.Request.URL.Query())
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	result, err := cc.comments.List(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (cc *CommentController) Create(c *gin.Context) {
	var input commentRequest
	if !bindJSON(c, &input) {
		return
	}
	comment, err := cc.comments.Create(c.Request.Context(), middlewares.CurrentUser(c), c.Param("id"), input.Content, input.ParentID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
