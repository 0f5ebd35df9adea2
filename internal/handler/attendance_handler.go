package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-attendance-tracker/internal/dto"
	"github.com/noah-isme/sma-attendance-tracker/internal/service"
	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
	"github.com/noah-isme/sma-attendance-tracker/pkg/response"
)

type attendanceService interface {
	RecordAttendance(ctx context.Context, req service.RecordAttendanceRequest) (*dto.RecordAttendanceResult, error)
}

// AttendanceHandler exposes attendance submission.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Record godoc
// @Summary Record attendance for one date
// @Description Statuses map student ids to Present or Absent. The batch is applied entirely or not at all.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.RecordAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
