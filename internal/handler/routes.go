package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-attendance/internal/web"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Attendance    *AttendanceHandler
	Students      *StudentHandler
	Competencies  *CompetencyHandler
	Metrics       *MetricsHandler
	EnableMetrics bool
}

// Register mounts the page, API and ops routes plus templates and static assets.
func Register(r *gin.Engine, h Handlers) {
	r.SetHTMLTemplate(web.MustTemplates())
	r.StaticFS("/static", web.Static())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if h.EnableMetrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	r.GET("/", h.Attendance.Index)
	r.POST("/save", h.Attendance.Save)
	r.GET("/history", h.Attendance.History)
	r.GET("/history/export", h.Attendance.Export)

	session := r.Group("/session/:id")
	session.GET("", h.Attendance.SessionDetail)
	session.GET("/edit", h.Attendance.EditSession)
	session.POST("/save", h.Attendance.SaveSession)

	r.GET("/students", h.Students.List)
	r.GET(managePath, h.Students.Manage)
	r.POST(managePath, h.Students.ManageAction)

	student := r.Group("/student/:id")
	student.GET("", h.Competencies.StudentDetail)
	student.POST("/competencies/save", h.Competencies.Save)
}
