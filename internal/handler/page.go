package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

// errorPage is the view model of error.html.
type errorPage struct {
	Status  int
	Message string
}

// renderError renders the HTML error page for err. Internal causes go to the
// gin error list for the request logger.
func renderError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	c.HTML(appErr.Status, "error.html", errorPage{Status: appErr.Status, Message: appErr.Message})
}

// idParam reads a positive numeric path parameter. Anything else is a NotFound.
func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.ErrNotFound
	}
	return id, nil
}

func malformed(err error) error {
	return appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, http.StatusBadRequest, appErrors.ErrMalformedInput.Message)
}
