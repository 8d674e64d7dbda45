package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
	"github.com/noah-isme/classroom-attendance/pkg/textutil"
)

type studentStore interface {
	ListByActive(ctx context.Context, active bool) ([]models.Student, error)
	ListSummaries(ctx context.Context) ([]models.StudentSummary, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type competencyCounter interface {
	Count(ctx context.Context) (int, error)
}

// StudentService manages the classroom roster.
type StudentService struct {
	repo         studentStore
	competencies competencyCounter
	validator    *validator.Validate
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentStore, competencies competencyCounter, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:         repo,
		competencies: competencies,
		validator:    validate,
		metrics:      metrics,
		logger:       logger,
	}
}

// ListActive returns the roster listing with attendance and competency tallies.
func (s *StudentService) ListActive(ctx context.Context) (*dto.StudentList, error) {
	start := time.Now()
	summaries, err := s.repo.ListSummaries(ctx)
	s.metrics.ObserveDBQuery("student_summaries", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo listar los estudiantes")
	}
	total, err := s.competencies.Count(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudieron contar las competencias")
	}
	list := &dto.StudentList{Rows: make([]dto.StudentRow, 0, len(summaries)), TotalStudents: len(summaries)}
	for _, sum := range summaries {
		list.Rows = append(list.Rows, dto.StudentRow{
			Student:              sum.Student,
			AttendancePercentage: sum.AttendancePercentage(),
			PresentCount:         sum.PresentCount,
			AbsentCount:          sum.AbsentCount,
			CompetenciesAchieved: sum.CompetenciesAchieved,
			CompetenciesTotal:    sum.CompetenciesTotal,
			TotalCompetencies:    total,
		})
	}
	return list, nil
}

// ManageView returns active and inactive students.
func (s *StudentService) ManageView(ctx context.Context) (*dto.ManageView, error) {
	active, err := s.repo.ListByActive(ctx, true)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo listar los estudiantes activos")
	}
	inactive, err := s.repo.ListByActive(ctx, false)
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo listar los estudiantes inactivos")
	}
	return &dto.ManageView{Active: active, Inactive: inactive}, nil
}

// Add creates an active student. Blank optional fields are stored as NULL.
func (s *StudentService) Add(ctx context.Context, req dto.StudentRequest) (*models.Student, error) {
	req = trimRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	student := &models.Student{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          textutil.NilIfBlank(req.Email),
		GithubUsername: textutil.NilIfBlank(req.GithubUsername),
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "no se pudo crear el estudiante")
	}
	s.logger.Info("student added", zap.Int64("student_id", student.ID), zap.String("name", student.FullName()))
	return student, nil
}

// Update rewrites a student's names and contact fields.
func (s *StudentService) Update(ctx context.Context, id int64, req dto.StudentRequest) (*models.Student, error) {
	req = trimRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgStudentNotFound)
		}
		return nil, appErrors.Internal(err, "no se pudo cargar el estudiante")
	}
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = textutil.NilIfBlank(req.Email)
	student.GithubUsername = textutil.NilIfBlank(req.GithubUsername)
	if _, err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "no se pudo actualizar el estudiante")
	}
	return student, nil
}

// Deactivate hides a student from capture. Unknown ids and repeats are no-ops.
func (s *StudentService) Deactivate(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, false)
}

// Activate restores a deactivated student.
func (s *StudentService) Activate(ctx context.Context, id int64) error {
	return s.setActive(ctx, id, true)
}

func (s *StudentService) setActive(ctx context.Context, id int64, active bool) error {
	changed, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return appErrors.Internal(err, "no se pudo cambiar el estado del estudiante")
	}
	if changed {
		s.logger.Info("student status changed", zap.Int64("student_id", id), zap.Bool("active", active))
	}
	return nil
}

// Delete permanently removes a student with all attendance and competency rows.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "no se pudo eliminar el estudiante")
	}
	if deleted {
		s.logger.Warn("student deleted", zap.Int64("student_id", id))
	}
	return nil
}

// SeedFromCSV imports first_name,last_name[,email[,github_username]] rows.
// A header row is skipped, as are rows whose email is already on the roster.
func (s *StudentService) SeedFromCSV(ctx context.Context, r io.Reader) (*dto.SeedResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &dto.SeedResult{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return result, appErrors.Wrap(err, appErrors.ErrMalformedInput.Code, appErrors.ErrMalformedInput.Status, fmt.Sprintf("csv inválido en la línea %d", line))
		}
		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) < 2 {
			return result, appErrors.Clone(appErrors.ErrMalformedInput, fmt.Sprintf("línea %d: se esperan al menos nombre y apellido", line))
		}
		req := dto.StudentRequest{FirstName: record[0], LastName: record[1]}
		if len(record) > 2 {
			req.Email = record[2]
		}
		if len(record) > 3 {
			req.GithubUsername = record[3]
		}
		req = trimRequest(req)
		if req.Email != "" {
			exists, err := s.repo.ExistsByEmail(ctx, req.Email)
			if err != nil {
				return result, appErrors.Internal(err, "no se pudo verificar el correo electrónico")
			}
			if exists {
				result.Skipped++
				continue
			}
		}
		if _, err := s.Add(ctx, req); err != nil {
			if appErrors.HasCode(err, appErrors.ErrValidation.Code) {
				return result, appErrors.Clone(appErrors.FromError(err), fmt.Sprintf("línea %d: %s", line, appErrors.FromError(err).Message))
			}
			return result, err
		}
		result.Created++
	}
	return result, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "first_name")
}

func trimRequest(req dto.StudentRequest) dto.StudentRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.GithubUsername = strings.TrimSpace(req.GithubUsername)
	return req
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.ErrValidation.Message
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("el campo %s es obligatorio", fieldLabel(fe.Field()))
	case "email":
		return "el correo electrónico no es válido"
	case "max":
		return fmt.Sprintf("el campo %s es demasiado largo", fieldLabel(fe.Field()))
	default:
		return fmt.Sprintf("el campo %s no es válido", fieldLabel(fe.Field()))
	}
}

func fieldLabel(field string) string {
	switch field {
	case "FirstName":
		return "nombre"
	case "LastName":
		return "apellido"
	case "GithubUsername":
		return "usuario de GitHub"
	case "Email":
		return "correo electrónico"
	default:
		return strings.ToLower(field)
	}
}
