package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
	"github.com/noah-isme/classroom-attendance/pkg/response"
)

type competencyService interface {
	StudentDetail(ctx context.Context, studentID int64) (*dto.StudentDetail, error)
	SaveCompetencies(ctx context.Context, studentID int64, updates []models.CompetencyUpdate) (*dto.SaveCompetenciesResult, error)
}

// CompetencyHandler serves the student detail page and competency checklist.
type CompetencyHandler struct {
	service competencyService
}

// NewCompetencyHandler builds a new handler.
func NewCompetencyHandler(service competencyService) *CompetencyHandler {
	return &CompetencyHandler{service: service}
}

// StudentDetail renders a student's tallies and checklist.
func (h *CompetencyHandler) StudentDetail(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		renderError(c, err)
		return
	}
	detail, err := h.service.StudentDetail(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "student_detail.html", detail)
}

// Save godoc
// @Summary Save a student's competency checklist
// @Tags Competencies
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body dto.SaveCompetenciesRequest true "Achieved flags and optional notes keyed by competency id"
// @Success 200 {object} response.Result
// @Failure 400 {object} response.Result
// @Failure 404 {object} response.Result
// @Router /student/{id}/competencies/save [post]
func (h *CompetencyHandler) Save(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "estudiante no encontrado"))
		return
	}
	var req dto.SaveCompetenciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, malformed(err))
		return
	}
	updates, err := req.Updates()
	if err != nil {
		response.Error(c, malformed(err))
		return
	}
	result, err := h.service.SaveCompetencies(c.Request.Context(), id, updates)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Competencias guardadas correctamente", gin.H{
		"competencies_achieved": result.CompetenciesAchieved,
	})
}
