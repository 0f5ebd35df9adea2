package view

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-attendance-tracker/internal/dto"
	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/internal/repository"
	"github.com/noah-isme/sma-attendance-tracker/internal/service"
	"github.com/noah-isme/sma-attendance-tracker/pkg/config"
)

func newPages(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewStore()
	roster := repository.NewRosterRepository(store)
	ledger := repository.NewAttendanceRepository(store)
	validate := service.NewValidator()
	students := service.NewStudentService(roster, validate, nil, nil)
	attendance := service.NewAttendanceService(roster, ledger, config.ResubmitReplace, validate, nil, nil)
	stats := service.NewStatisticsService(roster, ledger, nil, nil)

	renderer, err := NewRenderer()
	require.NoError(t, err)
	h := NewHandler(students, attendance, stats, renderer, nil)
	h.now = func() time.Time { return time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) }

	r := gin.New()
	h.Register(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStudentsPage(t *testing.T) {
	r := newPages(t)

	rec := get(r, "/views/students")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No students registered yet.")

	rec = postForm(r, "/views/students", url.Values{"name": {"Alice"}, "class": {"10A"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/views/students?added=1", rec.Header().Get("Location"))

	rec = get(r, "/views/students?added=1")
	body := rec.Body.String()
	assert.Contains(t, body, "Student added successfully!")
	assert.Contains(t, body, "<td>Alice</td>")
	assert.Contains(t, body, "<td>0.0%</td>")
}

func TestStudentsPageValidationError(t *testing.T) {
	r := newPages(t)

	rec := postForm(r, "/views/students", url.Values{"name": {"Alice"}, "class": {"  "}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Class name cannot be empty")
	assert.Contains(t, body, `value="Alice"`)
	assert.Contains(t, body, "No students registered yet.")
}

func TestAttendancePage(t *testing.T) {
	r := newPages(t)

	rec := get(r, "/views/attendance")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please add students first.")

	postForm(r, "/views/students", url.Values{"name": {"Alice"}, "class": {"10A"}})
	postForm(r, "/views/students", url.Values{"name": {"Bob"}, "class": {"10B"}})

	rec = get(r, "/views/attendance")
	body := rec.Body.String()
	assert.Contains(t, body, "Mark Attendance for 2024-05-06")
	assert.Contains(t, body, `name="status_1"`)
	assert.Contains(t, body, "Bob (10B)")

	rec = postForm(r, "/views/attendance", url.Values{
		"date":     {"2024-01-01"},
		"status_1": {"Present"},
		"status_2": {"Absent"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/views/attendance?date=2024-01-01&recorded=1", rec.Header().Get("Location"))

	rec = get(r, "/views/statistics")
	body = rec.Body.String()
	assert.Contains(t, body, "50.0%")
	assert.Contains(t, body, "Attendance Rate: 100.0%")
}

func TestAttendancePageRejectsBadStatus(t *testing.T) {
	r := newPages(t)
	postForm(r, "/views/students", url.Values{"name": {"Alice"}, "class": {"10A"}})

	rec := postForm(r, "/views/attendance", url.Values{"date": {"2024-01-01"}, "status_1": {"Late"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be Present or Absent")

	rec = postForm(r, "/views/attendance", url.Values{"date": {"2024-01-01"}, "status_x": {"Present"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsPage(t *testing.T) {
	r := newPages(t)

	rec := get(r, "/views/statistics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No students registered yet.")

	postForm(r, "/views/students", url.Values{"name": {"Alice"}, "class": {"10A"}})
	postForm(r, "/views/students", url.Values{"name": {"Bob"}, "class": {"10B"}})

	rec = get(r, "/views/statistics")
	body := rec.Body.String()
	assert.Contains(t, body, ">0%<")
	assert.Contains(t, body, "No attendance records available for this student.")
	assert.NotContains(t, body, "<svg")

	postForm(r, "/views/attendance", url.Values{"date": {"2024-01-02"}, "status_1": {"Absent"}, "status_2": {"Present"}})
	postForm(r, "/views/attendance", url.Values{"date": {"2024-01-01"}, "status_1": {"Present"}, "status_2": {"Present"}})

	rec = get(r, "/views/statistics?student=1")
	body = rec.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "2024-01-01: Present")
	assert.Contains(t, body, "Attendance Rate: 50.0%")

	rec = get(r, "/views/statistics?student=2")
	assert.Contains(t, rec.Body.String(), "Class: 10B")
}

func TestAssetsServed(t *testing.T) {
	r := newPages(t)

	rec := get(r, "/assets/styles.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".student-card")
}

func TestBuildChart(t *testing.T) {
	assert.Nil(t, BuildChart(nil))

	day := func(d int) models.Date { return models.NewDate(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)) }
	chart := BuildChart([]models.SeriesPoint{
		{Date: day(1), Status: models.AttendanceStatusPresent},
		{Date: day(2), Status: models.AttendanceStatusAbsent},
		{Date: day(3), Status: models.AttendanceStatusPresent},
	})
	require.NotNil(t, chart)
	require.Len(t, chart.Markers, 3)
	assert.Equal(t, chart.YPresent, chart.Markers[0].Y)
	assert.Equal(t, chart.YAbsent, chart.Markers[1].Y)
	assert.Equal(t, presentColor, chart.Markers[2].Color)
	assert.Equal(t, chart.Left, chart.Markers[0].X)
	assert.Equal(t, chart.Right, chart.Markers[2].X)
	assert.Less(t, chart.Markers[0].X, chart.Markers[1].X)
	assert.Equal(t, "48.0,48.0 320.0,172.0 592.0,48.0", chart.Polyline)
	assert.Len(t, chart.XLabels, 3)

	single := BuildChart([]models.SeriesPoint{{Date: day(1), Status: models.AttendanceStatusAbsent}})
	require.Len(t, single.Markers, 1)
	assert.Equal(t, float64(chartWidth)/2, single.Markers[0].X)
}

func TestBuildChartThinsLabels(t *testing.T) {
	series := make([]models.SeriesPoint, 20)
	for i := range series {
		series[i] = models.SeriesPoint{
			Date:   models.NewDate(time.Date(2024, 2, i+1, 0, 0, 0, 0, time.UTC)),
			Status: models.AttendanceStatusPresent,
		}
	}
	chart := BuildChart(series)
	assert.LessOrEqual(t, len(chart.XLabels), maxXLabels+1)
	assert.Equal(t, "2024-02-20", chart.XLabels[len(chart.XLabels)-1].Text)
}

func TestBuildChartUsesDateAxis(t *testing.T) {
	day := func(d int) models.Date { return models.NewDate(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)) }
	chart := BuildChart([]models.SeriesPoint{
		{Date: day(1), Status: models.AttendanceStatusPresent},
		{Date: day(2), Status: models.AttendanceStatusAbsent},
		{Date: day(30), Status: models.AttendanceStatusPresent},
		{Date: day(30), Status: models.AttendanceStatusAbsent},
	})
	require.NotNil(t, chart)
	require.Len(t, chart.Markers, 4)

	span := chart.Right - chart.Left
	assert.Equal(t, chart.Left, chart.Markers[0].X)
	assert.InDelta(t, chart.Left+span/29, chart.Markers[1].X, 1e-9)
	assert.Equal(t, chart.Right, chart.Markers[2].X)
	assert.Equal(t, chart.Markers[2].X, chart.Markers[3].X, "same date shares an x position")

	texts := make([]string, 0, len(chart.XLabels))
	for _, l := range chart.XLabels {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-30"}, texts)
}

func TestBuildChartLabelsNeverCrowdTheLastDate(t *testing.T) {
	for _, n := range []int{9, 10, 17, 20, 31} {
		series := make([]models.SeriesPoint, n)
		for i := range series {
			series[i] = models.SeriesPoint{
				Date:   models.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)),
				Status: models.AttendanceStatusPresent,
			}
		}
		chart := BuildChart(series)
		gap := (chart.Right - chart.Left) / maxXLabels

		require.NotEmpty(t, chart.XLabels)
		assert.Equal(t, series[0].Date.String(), chart.XLabels[0].Text)
		assert.Equal(t, series[n-1].Date.String(), chart.XLabels[len(chart.XLabels)-1].Text)
		for i := 1; i < len(chart.XLabels); i++ {
			assert.GreaterOrEqual(t, chart.XLabels[i].X-chart.XLabels[i-1].X, gap, "n=%d label %d", n, i)
		}
	}
}

type sparseRosterStats struct {
	requested []int
}

func (s *sparseRosterStats) Overview(context.Context) (*dto.OverviewResponse, error) {
	return &dto.OverviewResponse{
		TotalStudents:      2,
		OverallRateDisplay: "0%",
		Students: []models.StudentRate{
			{Student: models.Student{ID: 10, Name: "Alice", ClassLabel: "10A"}},
			{Student: models.Student{ID: 20, Name: "Bob", ClassLabel: "10B"}},
		},
	}, nil
}

func (s *sparseRosterStats) StudentStatistics(_ context.Context, id int) (*dto.StudentStatisticsResponse, error) {
	s.requested = append(s.requested, id)
	return &dto.StudentStatisticsResponse{Student: models.Student{ID: id}, PercentDisplay: "0.0%"}, nil
}

func TestStatisticsPageSelectsByRosterID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	renderer, err := NewRenderer()
	require.NoError(t, err)
	stats := &sparseRosterStats{}
	h := NewHandler(nil, nil, stats, renderer, nil)

	r := gin.New()
	h.Register(r)

	for _, query := range []string{"?student=20", "?student=2", "?student=abc", ""} {
		rec := get(r, "/views/statistics"+query)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []int{20, 10, 10, 10}, stats.requested)
}
