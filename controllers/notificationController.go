package controllers

import (
	"net/http"
	"strconv"

	"civicfix-be/middlewares"
	"civicfix-be/services"
	"civicfix-be/utils"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (nc *NotificationController) List(c *gin.Context) {
	page, limit, err := services.ParsePaging(c.Request.URL.Query())
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	unreadOnly := false
	if raw := c.Query("unreadOnly"); raw != "" {
		if unreadOnly, err = strconv.ParseBool(raw); err != nil {
			middlewares.RespondError(c, utils.NewValidationError("Invalid unreadOnly parameter", map[string]any{"unreadOnly": raw}))
			return
		}
	}

	result, err := nc.notifications.List(c.Request.Context(), middlewares.CurrentUserID(c), unreadOnly, page, limit)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	if err := nc.notifications.MarkRead(c.Request.Context(), middlewares.CurrentUserID(c), c.Param("id")); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	changed, err := nc.notifications.MarkAllRead(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": changed})
}

func (nc *NotificationController) Delete(c *gin.Context) {
	if err := nc.notifications.Delete(c.Request.Context(), middlewares.CurrentUserID(c), c.Param("id")); err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
