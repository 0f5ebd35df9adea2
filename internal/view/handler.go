package view

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-tracker/internal/dto"
	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/internal/service"
	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
)

const (
	pageStudents   = "students"
	pageAttendance = "attendance"
	pageStatistics = "statistics"

	statusFieldPrefix = "status_"
)

type rosterService interface {
	AddStudent(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
}

type attendanceService interface {
	RecordAttendance(ctx context.Context, req service.RecordAttendanceRequest) (*dto.RecordAttendanceResult, error)
}

type statisticsService interface {
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
	StudentStatistics(ctx context.Context, studentID int) (*dto.StudentStatisticsResponse, error)
}

type pageData struct {
	Title  string
	Active string
	Flash  string
	Error  string

	Form     service.CreateStudentRequest
	Students []models.StudentRate

	Roster []models.Student
	Date   string

	TotalStudents int
	OverallRate   string
	SelectedID    int
	Selected      *dto.StudentStatisticsResponse
	Chart         *Chart
}

// Handler serves the three HTML pages of the tracker.
type Handler struct {
	students   rosterService
	attendance attendanceService
	stats      statisticsService
	renderer   *Renderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewHandler constructs the page handler.
func NewHandler(students rosterService, attendance attendanceService, stats statisticsService, renderer *Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		students:   students,
		attendance: attendance,
		stats:      stats,
		renderer:   renderer,
		logger:     logger,
		now:        time.Now,
	}
}

// Register mounts the pages and the stylesheet.
func (h *Handler) Register(r gin.IRouter) {
	r.StaticFS("/assets", Assets())
	views := r.Group("/views")
	views.GET("/students", h.Students)
	views.POST("/students", h.AddStudent)
	views.GET("/attendance", h.Attendance)
	views.POST("/attendance", h.RecordAttendance)
	views.GET("/statistics", h.Statistics)
}

// Students renders the Student List page.
func (h *Handler) Students(c *gin.Context) {
	data := pageData{Title: "Student's List", Active: pageStudents}
	if c.Query("added") != "" {
		data.Flash = "Student added successfully!"
	}
	h.renderStudents(c, http.StatusOK, data)
}

// AddStudent handles the add-student form.
func (h *Handler) AddStudent(c *gin.Context) {
	var form service.CreateStudentRequest
	data := pageData{Title: "Student's List", Active: pageStudents}
	if err := c.ShouldBind(&form); err != nil {
		data.Error = "invalid form submission"
		h.renderStudents(c, http.StatusBadRequest, data)
		return
	}
	if _, err := h.students.AddStudent(c.Request.Context(), form); err != nil {
		appErr := appErrors.FromError(err)
		data.Error = appErr.Message
		data.Form = form
		h.renderStudents(c, appErr.Status, data)
		return
	}
	c.Redirect(http.StatusSeeOther, "/views/students?added=1")
}

func (h *Handler) renderStudents(c *gin.Context, status int, data pageData) {
	overview, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data.Students = overview.Students
	h.render(c, status, pageStudents, data)
}

// Attendance renders the Mark Attendance page for the date in the query,
// defaulting to today.
func (h *Handler) Attendance(c *gin.Context) {
	data := pageData{Title: "Mark Attendance", Active: pageAttendance, Date: h.pickDate(c.Query("date"))}
	if c.Query("recorded") != "" {
		data.Flash = "Attendance recorded successfully!"
	}
	h.renderAttendance(c, http.StatusOK, data)
}

// RecordAttendance handles the attendance form. Each select is named
// status_<student id>.
func (h *Handler) RecordAttendance(c *gin.Context) {
	data := pageData{Title: "Mark Attendance", Active: pageAttendance}
	if err := c.Request.ParseForm(); err != nil {
		data.Date = h.pickDate("")
		data.Error = "invalid form submission"
		h.renderAttendance(c, http.StatusBadRequest, data)
		return
	}

	req := service.RecordAttendanceRequest{
		Date:     strings.TrimSpace(c.Request.PostForm.Get("date")),
		Statuses: make(map[int]string),
	}
	data.Date = h.pickDate(req.Date)
	for key, values := range c.Request.PostForm {
		if !strings.HasPrefix(key, statusFieldPrefix) || len(values) == 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(key, statusFieldPrefix))
		if err != nil {
			data.Error = "invalid student selection"
			h.renderAttendance(c, http.StatusBadRequest, data)
			return
		}
		req.Statuses[id] = values[0]
	}

	result, err := h.attendance.RecordAttendance(c.Request.Context(), req)
	if err != nil {
		appErr := appErrors.FromError(err)
		data.Error = appErr.Message
		h.renderAttendance(c, appErr.Status, data)
		return
	}
	query := url.Values{"date": {result.Date.String()}, "recorded": {"1"}}
	c.Redirect(http.StatusSeeOther, "/views/attendance?"+query.Encode())
}

func (h *Handler) renderAttendance(c *gin.Context, status int, data pageData) {
	roster, err := h.students.ListStudents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data.Roster = roster
	h.render(c, status, pageAttendance, data)
}

// Statistics renders the View Statistics page. The student query parameter
// selects the card; the first student is shown by default.
func (h *Handler) Statistics(c *gin.Context) {
	ctx := c.Request.Context()
	data := pageData{Title: "Attendance Statistics", Active: pageStatistics}

	overview, err := h.stats.Overview(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	data.TotalStudents = overview.TotalStudents
	data.OverallRate = overview.OverallRateDisplay
	data.Roster = make([]models.Student, 0, len(overview.Students))
	for _, row := range overview.Students {
		data.Roster = append(data.Roster, row.Student)
	}

	if len(data.Roster) > 0 {
		data.SelectedID = data.Roster[0].ID
		if id, err := strconv.Atoi(c.Query("student")); err == nil && onRoster(data.Roster, id) {
			data.SelectedID = id
		}
		selected, err := h.stats.StudentStatistics(ctx, data.SelectedID)
		if err != nil {
			h.fail(c, err)
			return
		}
		data.Selected = selected
		data.Chart = BuildChart(selected.Series)
	}

	h.render(c, http.StatusOK, pageStatistics, data)
}

func onRoster(roster []models.Student, id int) bool {
	for _, student := range roster {
		if student.ID == id {
			return true
		}
	}
	return false
}

func (h *Handler) pickDate(raw string) string {
	if raw != "" {
		if d, err := models.ParseDate(raw); err == nil {
			return d.String()
		}
	}
	return models.NewDate(h.now()).String()
}

func (h *Handler) render(c *gin.Context, status int, page string, data pageData) {
	tmpl, ok := h.renderer.Page(page)
	if !ok {
		h.fail(c, appErrors.Clone(appErrors.ErrInternal, "page template missing: "+page))
		return
	}
	c.Render(status, render.HTML{Template: tmpl, Name: "base", Data: data})
}

func (h *Handler) fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	h.logger.Error("render page", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	c.String(appErr.Status, appErr.Message)
}
