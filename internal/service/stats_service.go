package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
	appErrors "github.com/coursemate/coursemate-api/pkg/errors"
	"github.com/coursemate/coursemate-api/pkg/export"
)

type totalsReader interface {
	Totals(ctx context.Context) (*models.Totals, error)
}

type scoredAttemptLister interface {
	ListScored(ctx context.Context) ([]models.QuizAttempt, error)
}

var attemptExportHeaders = []string{"Attempt ID", "Student ID", "Course ID", "Week", "Difficulty", "Score", "Scored At"}

// StatsService produces admin reporting figures and attempt exports.
type StatsService struct {
	stats    totalsReader
	attempts scoredAttemptLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewStatsService constructs the stats service.
func NewStatsService(stats totalsReader, attempts scoredAttemptLister, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		stats:    stats,
		attempts: attempts,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// Totals returns global entity counts.
func (s *StatsService) Totals(ctx context.Context) (*models.Totals, error) {
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statistics")
	}
	return totals, nil
}

// ExportAttemptsCSV renders all scored attempts as CSV.
func (s *StatsService) ExportAttemptsCSV(ctx context.Context) ([]byte, error) {
	data, err := s.attemptDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return out, nil
}

// ExportAttemptsPDF renders all scored attempts as a tabular PDF.
func (s *StatsService) ExportAttemptsPDF(ctx context.Context) ([]byte, error) {
	data, err := s.attemptDataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(data, "Quiz Attempts")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return out, nil
}

func (s *StatsService) attemptDataset(ctx context.Context) (export.Dataset, error) {
	attempts, err := s.attempts.ListScored(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attempts")
	}

	rows := make([]map[string]string, 0, len(attempts))
	for _, a := range attempts {
		score := ""
		if a.Score != nil {
			score = fmt.Sprintf("%.1f", *a.Score)
		}
		scoredAt := ""
		if a.ScoredAt != nil {
			scoredAt = a.ScoredAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, map[string]string{
			"Attempt ID": a.ID,
			"Student ID": a.StudentID,
			"Course ID":  a.CourseID,
			"Week":       strconv.Itoa(a.Week),
			"Difficulty": string(a.Difficulty),
			"Score":      score,
			"Scored At":  scoredAt,
		})
	}
	return export.Dataset{Headers: attemptExportHeaders, Rows: rows}, nil
}
