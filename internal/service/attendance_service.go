package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-tracker/internal/dto"
	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/internal/repository"
	"github.com/noah-isme/sma-attendance-tracker/pkg/config"
	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
	"github.com/noah-isme/sma-attendance-tracker/pkg/validation"
)

type ledgerRepository interface {
	Record(ctx context.Context, records []models.AttendanceRecord, replace bool) (repository.RecordResult, error)
	ForStudent(ctx context.Context, studentID int) ([]models.AttendanceRecord, error)
	All(ctx context.Context) ([]models.AttendanceRecord, error)
}

// RecordAttendanceRequest maps student ids to a Present/Absent status for one date.
type RecordAttendanceRequest struct {
	Date     string         `json:"date" validate:"required,datetime=2006-01-02"`
	Statuses map[int]string `json:"statuses" validate:"required,min=1,dive,keys,gt=0,endkeys,attendance_status"`
}

// AttendanceService coordinates attendance submissions.
type AttendanceService struct {
	roster    rosterRepository
	ledger    ledgerRepository
	policy    string
	validator *validation.Validator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service. policy is one of
// config.ResubmitReplace or config.ResubmitAppend.
func NewAttendanceService(roster rosterRepository, ledger ledgerRepository, policy string, validate *validation.Validator, metrics *MetricsService, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy != config.ResubmitAppend {
		policy = config.ResubmitReplace
	}
	return &AttendanceService{roster: roster, ledger: ledger, policy: policy, validator: validate, metrics: metrics, logger: logger}
}

// Policy returns the active resubmission policy.
func (s *AttendanceService) Policy() string {
	return s.policy
}

// RecordAttendance writes one record per entry as a single batch.
func (s *AttendanceService) RecordAttendance(ctx context.Context, req RecordAttendanceRequest) (*dto.RecordAttendanceResult, error) {
	req.Date = strings.TrimSpace(req.Date)
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordValidationFailure("record_attendance", err.Field)
		return nil, err
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Validation("date", "invalid date format, expected YYYY-MM-DD")
	}

	ids := make([]int, 0, len(req.Statuses))
	for id := range req.Statuses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	records := make([]models.AttendanceRecord, 0, len(ids))
	present, absent := 0, 0
	for _, id := range ids {
		status, _ := models.ParseAttendanceStatus(req.Statuses[id])
		if status == models.AttendanceStatusPresent {
			present++
		} else {
			absent++
		}
		records = append(records, models.AttendanceRecord{Date: date, StudentID: id, Status: status})
	}

	result, err := s.ledger.Record(ctx, records, s.policy == config.ResubmitReplace)
	if err != nil {
		var missing *repository.MissingStudentsError
		if errors.As(err, &missing) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown student ids: %v", missing.IDs))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.metrics.RecordAttendanceSubmission(s.policy, present, absent)
	s.logger.Info("attendance recorded",
		zap.String("date", date.String()),
		zap.Int("recorded", result.Appended),
		zap.Int("replaced", result.Replaced),
		zap.String("policy", s.policy),
	)
	return &dto.RecordAttendanceResult{
		Date:     date,
		Recorded: result.Appended,
		Replaced: result.Replaced,
		Present:  present,
		Absent:   absent,
		Policy:   s.policy,
	}, nil
}

// RecordsFor returns a student's records ordered by date.
func (s *AttendanceService) RecordsFor(ctx context.Context, studentID int) ([]models.AttendanceRecord, error) {
	if _, err := s.roster.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	records, err := s.ledger.ForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance records")
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	return records, nil
}
