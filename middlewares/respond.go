package middlewares

import (
	"civicfix-be/utils"

	"github.com/gin-gonic/gin"
)

// RespondError renders err as {"error", "code", "details"} and aborts the chain.
func RespondError(c *gin.Context, err error) {
	appErr := utils.ToAppError(err)
	if appErr.HTTPStatus >= 500 {
		// Recorded so RequestLogger can log the cause with the request.
		_ = c.Error(err)
	}
	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, body)
}
