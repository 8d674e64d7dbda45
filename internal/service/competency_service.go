package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
)

const msgCompetencyNotFound = "competencia no encontrada"

type studentSummaryReader interface {
	FindSummary(ctx context.Context, id int64) (*models.StudentSummary, error)
}

type competencyCatalog interface {
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type studentCompetencyStore interface {
	StatusForStudent(ctx context.Context, studentID int64) ([]models.CompetencyStatus, error)
	UpsertMany(ctx context.Context, studentID int64, updates []models.CompetencyUpdate) error
	AchievedCount(ctx context.Context, studentID int64) (int, error)
}

// CompetencyService evaluates students against the competency catalog.
type CompetencyService struct {
	students studentSummaryReader
	catalog  competencyCatalog
	records  studentCompetencyStore
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewCompetencyService constructs a CompetencyService.
func NewCompetencyService(students studentSummaryReader, catalog competencyCatalog, records studentCompetencyStore, metrics *MetricsService, logger *zap.Logger) *CompetencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetencyService{students: students, catalog: catalog, records: records, metrics: metrics, logger: logger}
}

// StudentDetail returns a student's attendance tallies and competency checklist.
func (s *CompetencyService) StudentDetail(ctx context.Context, studentID int64) (*dto.StudentDetail, error) {
	summary, err := s.findStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	status, err := s.records.StatusForStudent(ctx, studentID)
	s.metrics.ObserveDBQuery("student_competency_status", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudieron cargar las competencias")
	}
	achieved := 0
	for _, c := range status {
		if c.IsAchieved {
			achieved++
		}
	}
	return &dto.StudentDetail{
		Student:              summary.Student,
		Competencies:         status,
		AttendanceCount:      summary.PresentCount,
		AbsenceCount:         summary.AbsentCount,
		AttendancePercentage: summary.AttendancePercentage(),
		CompetenciesAchieved: achieved,
		TotalCompetencies:    len(status),
	}, nil
}

// SaveCompetencies upserts achieved flags (and notes, when given) and returns the new achieved count.
func (s *CompetencyService) SaveCompetencies(ctx context.Context, studentID int64, updates []models.CompetencyUpdate) (*dto.SaveCompetenciesResult, error) {
	if _, err := s.findStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		ids := make([]int64, 0, len(updates))
		for _, u := range updates {
			ids = append(ids, u.CompetencyID)
		}
		missing, err := s.catalog.MissingIDs(ctx, ids)
		if err != nil {
			return nil, appErrors.Internal(err, "no se pudieron verificar las competencias")
		}
		if len(missing) > 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s: %s", msgCompetencyNotFound, joinIDs(missing)))
		}
		start := time.Now()
		err = s.records.UpsertMany(ctx, studentID, updates)
		s.metrics.ObserveDBQuery("student_competency_upsert", time.Since(start))
		if err != nil {
			return nil, appErrors.Internal(err, "no se pudieron guardar las competencias")
		}
		s.metrics.RecordCompetenciesSaved(len(updates))
	}
	achieved, err := s.records.AchievedCount(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudieron contar las competencias")
	}
	s.logger.Info("competencies saved",
		zap.Int64("student_id", studentID),
		zap.Int("updates", len(updates)),
		zap.Int("achieved", achieved),
	)
	return &dto.SaveCompetenciesResult{CompetenciesAchieved: achieved}, nil
}

func (s *CompetencyService) findStudent(ctx context.Context, id int64) (*models.StudentSummary, error) {
	summary, err := s.students.FindSummary(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		}
		return nil, appErrors.Internal(err, "no se pudo cargar el estudiante")
	}
	return summary, nil
}
