package dto

import (
	"fmt"

	"github.com/noah-isme/sma-attendance-tracker/internal/models"
)

// FormatPercent renders a rate with one decimal, e.g. "87.5%".
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

// OverallRate is the present/total ratio across the whole ledger.
type OverallRate struct {
	Rate       float64 `json:"rate"`
	HasRecords bool    `json:"has_records"`
}

// Display renders the rate for the statistics view; an empty ledger shows "0%".
func (r OverallRate) Display() string {
	if !r.HasRecords {
		return "0%"
	}
	return FormatPercent(r.Rate)
}

// OverviewResponse backs the statistics overview and the student list.
type OverviewResponse struct {
	TotalStudents      int                  `json:"total_students"`
	TotalRecords       int                  `json:"total_records"`
	OverallRate        float64              `json:"overall_rate"`
	OverallRateDisplay string               `json:"overall_rate_display"`
	Students           []models.StudentRate `json:"students"`
}

// StudentStatisticsResponse captures a student card with its chart series.
type StudentStatisticsResponse struct {
	Student        models.Student           `json:"student"`
	Summary        models.AttendanceSummary `json:"summary"`
	PercentDisplay string                   `json:"percent_display"`
	Series         []models.SeriesPoint     `json:"series"`
}
