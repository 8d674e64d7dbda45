package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

const (
	msgSessionNotFound = "sesión de asistencia no encontrada"
	msgStudentNotFound = "estudiante no encontrado"
	msgOnlyToday       = "Solo puedes editar sesiones del día actual."
)

type attendanceStudentReader interface {
	ListByActive(ctx context.Context, active bool) ([]models.Student, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type attendanceSessionStore interface {
	GetOrCreate(ctx context.Context, day string, description string) (*models.AttendanceSession, error)
	FindByID(ctx context.Context, id int64) (*models.AttendanceSession, error)
	ListWithStats(ctx context.Context) ([]models.SessionStats, error)
}

type attendanceRecordStore interface {
	UpsertMany(ctx context.Context, sessionID int64, marks map[int64]bool) error
	PresenceBySession(ctx context.Context, sessionID int64) (map[int64]bool, error)
	Counts(ctx context.Context, sessionID int64) (models.SessionCounts, error)
	ListBySession(ctx context.Context, sessionID int64) ([]models.SessionRecord, error)
}

// Clock returns the current instant. Tests substitute a fixed one.
type Clock func() time.Time

// AttendanceService captures and reviews daily attendance.
type AttendanceService struct {
	students attendanceStudentReader
	sessions attendanceSessionStore
	records  attendanceRecordStore
	location *time.Location
	now      Clock
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAttendanceService wires the attendance use-cases. A nil location means UTC.
func NewAttendanceService(
	students attendanceStudentReader,
	sessions attendanceSessionStore,
	records attendanceRecordStore,
	location *time.Location,
	now Clock,
	metrics *MetricsService,
	logger *zap.Logger,
) *AttendanceService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		students: students,
		sessions: sessions,
		records:  records,
		location: location,
		now:      now,
		metrics:  metrics,
		logger:   logger,
	}
}

// Today is the current date in the classroom timezone.
func (s *AttendanceService) Today() time.Time {
	return s.now().In(s.location)
}

// TodaySession returns today's session, creating it on first use.
func (s *AttendanceService) TodaySession(ctx context.Context) (*models.AttendanceSession, error) {
	today := s.Today()
	start := time.Now()
	session, err := s.sessions.GetOrCreate(ctx, today.Format(models.DateLayout), models.DefaultSessionDescription(today))
	s.metrics.ObserveDBQuery("attendance_session_get_or_create", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo abrir la sesión de hoy")
	}
	return session, nil
}

// TodayView lists every active student with today's presence flag.
func (s *AttendanceService) TodayView(ctx context.Context) (*dto.AttendanceSheet, error) {
	session, err := s.TodaySession(ctx)
	if err != nil {
		return nil, err
	}
	return s.sheet(ctx, session, false)
}

// SaveToday upserts marks into today's session.
func (s *AttendanceService) SaveToday(ctx context.Context, marks map[int64]bool) (*dto.SaveAttendanceResult, error) {
	session, err := s.TodaySession(ctx)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, session, marks, "today")
}

// EditView returns the capture sheet of a session dated today. Other dates
// yield ErrForbidden; callers fall back to SessionDetail.
func (s *AttendanceService) EditView(ctx context.Context, sessionID int64) (*dto.AttendanceSheet, error) {
	session, err := s.EditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.sheet(ctx, session, true)
}

// SaveSession upserts marks into a session dated today.
func (s *AttendanceService) SaveSession(ctx context.Context, sessionID int64, marks map[int64]bool) (*dto.SaveAttendanceResult, error) {
	session, err := s.EditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, session, marks, "session")
}

// History lists every session, most recent first, with tallies.
func (s *AttendanceService) History(ctx context.Context) ([]dto.HistoryRow, error) {
	start := time.Now()
	stats, err := s.sessions.ListWithStats(ctx)
	s.metrics.ObserveDBQuery("attendance_history", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo cargar el historial de asistencia")
	}
	rows := make([]dto.HistoryRow, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, dto.HistoryRow{
			Session:    st.AttendanceSession,
			Total:      st.Total(),
			Present:    st.Present,
			Absent:     st.Absent,
			Percentage: st.Percentage(),
		})
	}
	return rows, nil
}

// SessionDetail returns a session's records and whether it may still be edited.
func (s *AttendanceService) SessionDetail(ctx context.Context, sessionID int64) (*dto.SessionDetail, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudieron cargar los registros de la sesión")
	}
	detail := &dto.SessionDetail{
		Session: *session,
		Records: records,
		CanEdit: session.IsOn(s.Today()),
	}
	for _, r := range records {
		if r.IsPresent {
			detail.PresentCount++
		} else {
			detail.AbsentCount++
		}
	}
	return detail, nil
}

func (s *AttendanceService) findSession(ctx context.Context, id int64) (*models.AttendanceSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgSessionNotFound)
		}
		return nil, appErrors.Internal(err, "no se pudo cargar la sesión de asistencia")
	}
	return session, nil
}

// EditableSession returns the session when it exists and is dated today:
// ErrNotFound first, then ErrForbidden.
func (s *AttendanceService) EditableSession(ctx context.Context, id int64) (*models.AttendanceSession, error) {
	session, err := s.findSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsOn(s.Today()) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, msgOnlyToday)
	}
	return session, nil
}

func (s *AttendanceService) sheet(ctx context.Context, session *models.AttendanceSession, edit bool) (*dto.AttendanceSheet, error) {
	students, err := s.students.ListByActive(ctx, true)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudieron cargar los estudiantes")
	}
	presence, err := s.records.PresenceBySession(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo cargar la asistencia")
	}
	sheet := &dto.AttendanceSheet{
		Session:       *session,
		Today:         s.Today().Format(models.DateLayout),
		Marks:         make([]dto.AttendanceMark, 0, len(students)),
		TotalStudents: len(students),
		IsEditMode:    edit,
	}
	for _, st := range students {
		present := presence[st.ID]
		sheet.Marks = append(sheet.Marks, dto.AttendanceMark{Student: st, IsPresent: present})
		if present {
			sheet.PresentCount++
		}
	}
	sheet.AbsentCount = sheet.TotalStudents - sheet.PresentCount
	return sheet, nil
}

func (s *AttendanceService) save(ctx context.Context, session *models.AttendanceSession, marks map[int64]bool, scope string) (*dto.SaveAttendanceResult, error) {
	if err := s.ensureStudents(ctx, marks); err != nil {
		return nil, err
	}
	start := time.Now()
	err := s.records.UpsertMany(ctx, session.ID, marks)
	s.metrics.ObserveDBQuery("attendance_upsert", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo guardar la asistencia")
	}
	s.metrics.RecordAttendanceSaved(scope, len(marks))

	counts, err := s.records.Counts(ctx, session.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo contar la asistencia")
	}
	s.logger.Info("attendance saved",
		zap.Int64("session_id", session.ID),
		zap.String("date", session.DateKey()),
		zap.Int("marks", len(marks)),
		zap.Int("present", counts.Present),
		zap.Int("absent", counts.Absent),
	)
	return &dto.SaveAttendanceResult{PresentCount: counts.Present, AbsentCount: counts.Absent}, nil
}

func (s *AttendanceService) ensureStudents(ctx context.Context, marks map[int64]bool) error {
	if len(marks) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(marks))
	for id := range marks {
		ids = append(ids, id)
	}
	missing, err := s.students.MissingIDs(ctx, ids)
	if err != nil {
		return appErrors.Internal(err, "no se pudieron verificar los estudiantes")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s: %s", msgStudentNotFound, joinIDs(missing)))
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
