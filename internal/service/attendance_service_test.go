package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/internal/repository"
	"github.com/noah-isme/sma-attendance-tracker/pkg/config"
	appErrors "github.com/noah-isme/sma-attendance-tracker/pkg/errors"
)

type fixture struct {
	students   *StudentService
	attendance *AttendanceService
	stats      *StatisticsService
	ledger     *repository.AttendanceRepository
	metrics    *MetricsService
}

func newFixture(t *testing.T, policy string, names ...string) *fixture {
	t.Helper()
	store := repository.NewStore()
	roster := repository.NewRosterRepository(store)
	ledger := repository.NewAttendanceRepository(store)
	metrics := NewMetricsService()
	validate := NewValidator()
	f := &fixture{
		students:   NewStudentService(roster, validate, metrics, zap.NewNop()),
		attendance: NewAttendanceService(roster, ledger, policy, validate, metrics, zap.NewNop()),
		stats:      NewStatisticsService(roster, ledger, metrics, zap.NewNop()),
		ledger:     ledger,
		metrics:    metrics,
	}
	for i, name := range names {
		_, err := f.students.AddStudent(context.Background(), CreateStudentRequest{Name: name, Class: "10" + string(rune('A'+i))})
		require.NoError(t, err)
	}
	return f
}

func TestAttendanceServiceRecordAttendance(t *testing.T) {
	f := newFixture(t, config.ResubmitReplace, "Alice", "Bob")
	ctx := context.Background()

	result, err := f.attendance.RecordAttendance(ctx, RecordAttendanceRequest{
		Date:     "2024-01-01",
		Statuses: map[int]string{1: "Present", 2: "absent"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", result.Date.String())
	assert.Equal(t, 2, result.Recorded)
	assert.Equal(t, 1, result.Present)
	assert.Equal(t, 1, result.Absent)

	all, err := f.ledger.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].StudentID, "batch is written in student id order")
	assert.Equal(t, models.AttendanceStatusAbsent, all[1].Status)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.submissions.WithLabelValues(config.ResubmitReplace)))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.attendanceRecords.WithLabelValues("absent")))
}

func TestAttendanceServiceRecordAttendanceValidation(t *testing.T) {
	cases := []struct {
		name  string
		req   RecordAttendanceRequest
		field string
	}{
		{"missing date", RecordAttendanceRequest{Statuses: map[int]string{1: "Present"}}, "date"},
		{"bad date", RecordAttendanceRequest{Date: "2024/01/01", Statuses: map[int]string{1: "Present"}}, "date"},
		{"no statuses", RecordAttendanceRequest{Date: "2024-01-01"}, "statuses"},
		{"unknown status", RecordAttendanceRequest{Date: "2024-01-01", Statuses: map[int]string{1: "Late"}}, "statuses"},
		{"non positive id", RecordAttendanceRequest{Date: "2024-01-01", Statuses: map[int]string{0: "Present"}}, "statuses"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, config.ResubmitReplace, "Alice")

			_, err := f.attendance.RecordAttendance(context.Background(), tc.req)

			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.True(t, errors.Is(appErr, appErrors.ErrValidation))
			assert.Equal(t, tc.field, appErr.Field)

			all, err := f.ledger.All(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestAttendanceServiceRejectsUnknownStudents(t *testing.T) {
	f := newFixture(t, config.ResubmitReplace, "Alice")

	_, err := f.attendance.RecordAttendance(context.Background(), RecordAttendanceRequest{
		Date:     "2024-01-01",
		Statuses: map[int]string{1: "Present", 5: "Absent"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Contains(t, err.Error(), "[5]")

	all, err := f.ledger.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAttendanceServiceResubmissionPolicies(t *testing.T) {
	ctx := context.Background()
	first := RecordAttendanceRequest{Date: "2024-01-01", Statuses: map[int]string{1: "Absent"}}
	second := RecordAttendanceRequest{Date: "2024-01-01", Statuses: map[int]string{1: "Present"}}

	replace := newFixture(t, config.ResubmitReplace, "Alice")
	_, err := replace.attendance.RecordAttendance(ctx, first)
	require.NoError(t, err)
	result, err := replace.attendance.RecordAttendance(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Replaced)
	records, err := replace.attendance.RecordsFor(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	appendOnly := newFixture(t, config.ResubmitAppend, "Alice")
	_, err = appendOnly.attendance.RecordAttendance(ctx, first)
	require.NoError(t, err)
	result, err = appendOnly.attendance.RecordAttendance(ctx, second)
	require.NoError(t, err)
	assert.Zero(t, result.Replaced)
	records, err = appendOnly.attendance.RecordsFor(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAttendanceServiceUnknownPolicyDefaultsToReplace(t *testing.T) {
	svc := NewAttendanceService(nil, nil, "overwrite", nil, nil, nil)
	assert.Equal(t, config.ResubmitReplace, svc.Policy())
}

func TestAttendanceServiceRecordsFor(t *testing.T) {
	f := newFixture(t, config.ResubmitReplace, "Alice")
	ctx := context.Background()

	records, err := f.attendance.RecordsFor(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	for _, date := range []string{"2024-02-03", "2024-02-01", "2024-02-02"} {
		_, err := f.attendance.RecordAttendance(ctx, RecordAttendanceRequest{Date: date, Statuses: map[int]string{1: "Present"}})
		require.NoError(t, err)
	}
	records, err = f.attendance.RecordsFor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-02-01", records[0].Date.String())
	assert.Equal(t, "2024-02-03", records[2].Date.String())

	_, err = f.attendance.RecordsFor(ctx, 9)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAttendanceServiceAcceptsPaddedDate(t *testing.T) {
	f := newFixture(t, config.ResubmitReplace, "Alice")

	result, err := f.attendance.RecordAttendance(context.Background(), RecordAttendanceRequest{
		Date:     " 2024-01-02 ",
		Statuses: map[int]string{1: "Present"},
	})

	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", result.Date.String())
}
