package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

// Result is the JSON contract of the save endpoints.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a success response. Fields in payload are merged next to "success".
func JSON(c *gin.Context, status int, message string, payload gin.H) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// OK responds with HTTP 200 and the success contract.
func OK(c *gin.Context, message string, payload gin.H) {
	JSON(c, http.StatusOK, message, payload)
}

// Error sends {"success": false, "error": msg}. The wrapped cause is attached
// to the gin context for the request logger and never serialised.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Result{Success: false, Error: appErr.Message})
}
