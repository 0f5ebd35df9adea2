package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-attendance-tracker/internal/dto"
	"github.com/noah-isme/sma-attendance-tracker/internal/middleware"
	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/internal/service"
	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
	"github.com/noah-isme/sma-attendance-tracker/pkg/response"
)

type rosterService interface {
	AddStudent(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	GetStudent(ctx context.Context, id int) (*models.Student, error)
}

type recordsService interface {
	RecordsFor(ctx context.Context, studentID int) ([]models.AttendanceRecord, error)
}

type statisticsService interface {
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
	StudentStatistics(ctx context.Context, studentID int) (*dto.StudentStatisticsResponse, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students   rosterService
	attendance recordsService
	stats      statisticsService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students rosterService, attendance recordsService, stats statisticsService) *StudentHandler {
	return &StudentHandler{students: students, attendance: attendance, stats: stats}
}

// List godoc
// @Summary List students with their attendance rate
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	overview, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview.Students, middleware.ResponseMeta(c, map[string]interface{}{
		"total": overview.TotalStudents,
	}))
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.GetStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.AddStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Records godoc
// @Summary List a student's attendance records ordered by date
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *StudentHandler) Records(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.attendance.RecordsFor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, middleware.ResponseMeta(c, map[string]interface{}{
		"total": len(records),
	}))
}

// Statistics godoc
// @Summary Attendance summary and series for one student
// @Tags Statistics
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/statistics [get]
func (h *StudentHandler) Statistics(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.stats.StudentStatistics(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, middleware.ResponseMeta(c, nil))
}

func studentID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, appErrors.Validation("id", "student id must be a positive integer")
	}
	return id, nil
}
