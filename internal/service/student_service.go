package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/internal/repository"
	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
	"github.com/noah-isme/sma-attendance-tracker/pkg/validation"
)

type rosterRepository interface {
	Create(ctx context.Context, student *models.Student) error
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int) (*models.Student, error)
	Count(ctx context.Context) (int, error)
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	Name  string `json:"name" form:"name" label:"Student name" validate:"notblank"`
	Class string `json:"class" form:"class" label:"Class name" validate:"notblank"`
}

// StudentService handles roster use-cases.
type StudentService struct {
	repo      rosterRepository
	validator *validation.Validator
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo rosterRepository, validate *validation.Validator, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, metrics: metrics, logger: logger}
}

// AddStudent validates the payload and appends a new student with the next id.
// On validation failure the roster is left untouched.
func (s *StudentService) AddStudent(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordValidationFailure("add_student", err.Field)
		return nil, err
	}
	student := &models.Student{
		Name:       strings.TrimSpace(req.Name),
		ClassLabel: strings.TrimSpace(req.Class),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.metrics.RecordStudentRegistered()
	s.logger.Info("student registered", zap.Int("student_id", student.ID), zap.String("class", student.ClassLabel))
	return student, nil
}

// ListStudents returns the roster in insertion order.
func (s *StudentService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// GetStudent returns a single student.
func (s *StudentService) GetStudent(ctx context.Context, id int) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
