package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-tracker/internal/dto"
	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/internal/repository"
	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
)

// StatisticsService derives attendance rates and series from the ledger.
// Nothing is cached; every call reads the current ledger.
type StatisticsService struct {
	roster  rosterRepository
	ledger  ledgerRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewStatisticsService constructs the statistics service.
func NewStatisticsService(roster rosterRepository, ledger ledgerRepository, metrics *MetricsService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{roster: roster, ledger: ledger, metrics: metrics, logger: logger}
}

// Summarize counts present/absent records and the present percentage.
func Summarize(records []models.AttendanceRecord) models.AttendanceSummary {
	var summary models.AttendanceSummary
	for _, rec := range records {
		switch rec.Status {
		case models.AttendanceStatusPresent:
			summary.Present++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		}
		summary.Total++
	}
	if summary.Total > 0 {
		summary.Percent = float64(summary.Present) / float64(summary.Total) * 100
	}
	return summary
}

// AttendancePercentage returns present/total*100 for the student, or 0 when
// the student has no records.
func (s *StatisticsService) AttendancePercentage(ctx context.Context, studentID int) (float64, error) {
	defer s.observe("percentage", time.Now())
	records, err := s.ledger.ForStudent(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to calculate percentage")
	}
	return Summarize(records).Percent, nil
}

// OverallAttendanceRate returns the present ratio across all students.
func (s *StatisticsService) OverallAttendanceRate(ctx context.Context) (dto.OverallRate, error) {
	defer s.observe("overall", time.Now())
	records, err := s.ledger.All(ctx)
	if err != nil {
		return dto.OverallRate{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to calculate overall rate")
	}
	summary := Summarize(records)
	return dto.OverallRate{Rate: summary.Percent, HasRecords: summary.Total > 0}, nil
}

// AttendanceSeries returns the student's (date, status) entries in ascending
// date order. A nil result means there is nothing to display.
func (s *StatisticsService) AttendanceSeries(ctx context.Context, studentID int) ([]models.SeriesPoint, error) {
	defer s.observe("series", time.Now())
	records, err := s.ledger.ForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build attendance series")
	}
	return seriesFrom(records), nil
}

// StudentStatistics returns the student card: summary plus series.
func (s *StatisticsService) StudentStatistics(ctx context.Context, studentID int) (*dto.StudentStatisticsResponse, error) {
	defer s.observe("student", time.Now())
	student, err := s.roster.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	records, err := s.ledger.ForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}
	summary := Summarize(records)
	return &dto.StudentStatisticsResponse{
		Student:        *student,
		Summary:        summary,
		PercentDisplay: dto.FormatPercent(summary.Percent),
		Series:         seriesFrom(records),
	}, nil
}

// Overview returns roster size, the overall rate and each student's rate.
func (s *StatisticsService) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	defer s.observe("overview", time.Now())
	students, err := s.roster.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	records, err := s.ledger.All(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}

	byStudent := make(map[int][]models.AttendanceRecord, len(students))
	for _, rec := range records {
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}

	rows := make([]models.StudentRate, 0, len(students))
	for _, student := range students {
		pct := Summarize(byStudent[student.ID]).Percent
		rows = append(rows, models.StudentRate{
			Student:               student,
			AttendanceRate:        pct,
			AttendanceRateDisplay: dto.FormatPercent(pct),
		})
	}

	overall := Summarize(records)
	rate := dto.OverallRate{Rate: overall.Percent, HasRecords: overall.Total > 0}
	return &dto.OverviewResponse{
		TotalStudents:      len(students),
		TotalRecords:       overall.Total,
		OverallRate:        rate.Rate,
		OverallRateDisplay: rate.Display(),
		Students:           rows,
	}, nil
}

func seriesFrom(records []models.AttendanceRecord) []models.SeriesPoint {
	if len(records) == 0 {
		return nil
	}
	series := make([]models.SeriesPoint, len(records))
	for i, rec := range records {
		series[i] = models.SeriesPoint{Date: rec.Date, Status: rec.Status}
	}
	return series
}

func (s *StatisticsService) observe(operation string, start time.Time) {
	s.metrics.ObserveStatistics(operation, time.Since(start))
}
