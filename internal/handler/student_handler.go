package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

const managePath = "/students/manage"

// Roster actions posted to /students/manage.
const (
	actionAdd        = "add"
	actionUpdate     = "update"
	actionDeactivate = "deactivate"
	actionActivate   = "activate"
	actionDelete     = "delete"
)

type studentService interface {
	ListActive(ctx context.Context) (*dto.StudentList, error)
	ManageView(ctx context.Context) (*dto.ManageView, error)
	Add(ctx context.Context, req dto.StudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req dto.StudentRequest) (*models.Student, error)
	Deactivate(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// StudentHandler serves the roster listing and management pages.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler builds a new handler.
func NewStudentHandler(service studentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// List renders active students with their tallies.
func (h *StudentHandler) List(c *gin.Context) {
	list, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "students_list.html", list)
}

// Manage renders the add/retire page.
func (h *StudentHandler) Manage(c *gin.Context) {
	h.renderManage(c, http.StatusOK, "", dto.StudentRequest{})
}

// ManageAction applies one roster action and redirects back to the page.
// Unknown actions and missing ids redirect without changes.
func (h *StudentHandler) ManageAction(c *gin.Context) {
	var form dto.ManageForm
	if err := c.ShouldBind(&form); err != nil {
		renderError(c, malformed(err))
		return
	}
	ctx := c.Request.Context()
	action := strings.ToLower(strings.TrimSpace(form.Action))

	var err error
	switch action {
	case actionAdd:
		_, err = h.service.Add(ctx, form.StudentRequest)
	case actionUpdate, actionDeactivate, actionActivate, actionDelete:
		id, parseErr := strconv.ParseInt(strings.TrimSpace(form.StudentID), 10, 64)
		if parseErr != nil {
			break
		}
		switch action {
		case actionUpdate:
			_, err = h.service.Update(ctx, id, form.StudentRequest)
		case actionDeactivate:
			err = h.service.Deactivate(ctx, id)
		case actionActivate:
			err = h.service.Activate(ctx, id)
		case actionDelete:
			err = h.service.Delete(ctx, id)
		}
	}
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrValidation.Code) {
			h.renderManage(c, http.StatusBadRequest, appErrors.FromError(err).Message, form.StudentRequest)
			return
		}
		renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, managePath)
}

func (h *StudentHandler) renderManage(c *gin.Context, status int, message string, form dto.StudentRequest) {
	view, err := h.service.ManageView(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	view.Error = message
	view.Form = form
	c.HTML(status, "students_manage.html", view)
}
