package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-attendance/internal/dto"
	"github.com/noah-isme/classroom-attendance/internal/models"
	appErrors "github.com/noah-isme/classroom-attendance/pkg/errors"
	"github.com/noah-isme/classroom-attendance/pkg/export"
)

// Export formats accepted by ExportHistory.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type historySource interface {
	History(ctx context.Context) ([]dto.HistoryRow, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders the attendance history as downloadable files.
type ExportService struct {
	history   historySource
	renderers map[string]datasetRenderer
	title     string
	now       Clock
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(history historySource, title string, now Clock, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if strings.TrimSpace(title) == "" {
		title = "Historial de asistencia"
	}
	return &ExportService{
		history: history,
		renderers: map[string]datasetRenderer{
			FormatCSV: export.NewCSVExporter(),
			FormatPDF: export.NewPDFExporter(),
		},
		title:  title,
		now:    now,
		logger: logger,
	}
}

// ExportHistory renders the history table in format ("csv" or "pdf").
func (s *ExportService) ExportHistory(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("formato de exportación no soportado: %q", format))
	}
	rows, err := s.history.History(ctx)
	if err != nil {
		return nil, err
	}
	content, err := renderer.Render(historyDataset(s.title, rows))
	if err != nil {
		return nil, appErrors.Internal(err, "no se pudo generar la exportación")
	}
	s.logger.Info("history exported", zap.String("format", format), zap.Int("rows", len(rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("attendance-history-%s.%s", s.now().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

func historyDataset(title string, rows []dto.HistoryRow) export.Dataset {
	data := export.Dataset{
		Title:   title,
		Headers: []string{"Fecha", "Descripción", "Presentes", "Ausentes", "Total", "Porcentaje"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, []string{
			row.Session.Date.Format(models.DateLayout),
			row.Session.Description,
			strconv.Itoa(row.Present),
			strconv.Itoa(row.Absent),
			strconv.Itoa(row.Total),
			strconv.FormatFloat(row.Percentage, 'f', 1, 64) + "%",
		})
	}
	return data
}
