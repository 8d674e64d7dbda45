package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	"github.com/noah-isme/classroom-attendance/internal/service"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
	"github.com/noah-isme/classroom-attendance/pkg/response"
)

type attendanceService interface {
	TodayView(ctx context.Context) (*dto.AttendanceSheet, error)
	SaveToday(ctx context.Context, marks map[int64]bool) (*dto.SaveAttendanceResult, error)
	EditView(ctx context.Context, sessionID int64) (*dto.AttendanceSheet, error)
	EditableSession(ctx context.Context, sessionID int64) (*models.AttendanceSession, error)
	SaveSession(ctx context.Context, sessionID int64, marks map[int64]bool) (*dto.SaveAttendanceResult, error)
	History(ctx context.Context) ([]dto.HistoryRow, error)
	SessionDetail(ctx context.Context, sessionID int64) (*dto.SessionDetail, error)
}

type historyExporter interface {
	ExportHistory(ctx context.Context, format string) (*service.ExportFile, error)
}

// AttendanceHandler serves the capture, history and session pages.
type AttendanceHandler struct {
	service attendanceService
	exports historyExporter
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(service attendanceService, exports historyExporter) *AttendanceHandler {
	return &AttendanceHandler{service: service, exports: exports}
}

// Index renders today's capture sheet.
func (h *AttendanceHandler) Index(c *gin.Context) {
	sheet, err := h.service.TodayView(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", sheet)
}

// Save godoc
// @Summary Save today's attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.SaveAttendanceRequest true "Presence keyed by student id"
// @Success 200 {object} response.Result
// @Failure 400 {object} response.Result
// @Failure 404 {object} response.Result
// @Router /save [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	marks, ok := bindMarks(c)
	if !ok {
		return
	}
	result, err := h.service.SaveToday(c.Request.Context(), marks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Asistencia guardada correctamente", gin.H{
		"present_count": result.PresentCount,
		"absent_count":  result.AbsentCount,
	})
}

// History renders every session with its tallies.
func (h *AttendanceHandler) History(c *gin.Context) {
	rows, err := h.service.History(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "history.html", rows)
}

// Export godoc
// @Summary Download the attendance history
// @Tags Attendance
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Result
// @Router /history/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	file, err := h.exports.ExportHistory(c.Request.Context(), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// SessionDetail renders one session read-only.
func (h *AttendanceHandler) SessionDetail(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		renderError(c, err)
		return
	}
	detail, err := h.service.SessionDetail(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "session_detail.html", detail)
}

// EditSession renders the capture sheet of a session dated today. Other
// sessions fall back to the read-only page with an inline message.
func (h *AttendanceHandler) EditSession(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		renderError(c, err)
		return
	}
	sheet, err := h.service.EditView(c.Request.Context(), id)
	if err == nil {
		c.HTML(http.StatusOK, "edit_session.html", sheet)
		return
	}
	if !appErrors.HasCode(err, appErrors.ErrForbidden.Code) {
		renderError(c, err)
		return
	}
	detail, detailErr := h.service.SessionDetail(c.Request.Context(), id)
	if detailErr != nil {
		renderError(c, detailErr)
		return
	}
	detail.CanEdit = false
	detail.Error = appErrors.FromError(err).Message
	c.HTML(http.StatusOK, "session_detail.html", detail)
}

// SaveSession godoc
// @Summary Update attendance of today's session by id
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param payload body dto.SaveAttendanceRequest true "Presence keyed by student id"
// @Success 200 {object} response.Result
// @Failure 400 {object} response.Result
// @Failure 403 {object} response.Result
// @Failure 404 {object} response.Result
// @Router /session/{id}/save [post]
func (h *AttendanceHandler) SaveSession(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "sesión de asistencia no encontrada"))
		return
	}
	// Missing or past sessions are reported before the body is looked at.
	if _, err := h.service.EditableSession(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	marks, ok := bindMarks(c)
	if !ok {
		return
	}
	result, err := h.service.SaveSession(c.Request.Context(), id, marks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Asistencia actualizada correctamente", gin.H{
		"present_count": result.PresentCount,
		"absent_count":  result.AbsentCount,
	})
}

func bindMarks(c *gin.Context) (map[int64]bool, bool) {
	var req dto.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, malformed(err))
		return nil, false
	}
	marks, err := req.Marks()
	if err != nil {
		response.Error(c, malformed(err))
		return nil, false
	}
	return marks, true
}
