package dto

import "github.com/noah-isme/sma-attendance-tracker/internal/models"

// RecordAttendanceResult summarises an accepted attendance batch.
type RecordAttendanceResult struct {
	Date     models.Date `json:"date"`
	Recorded int         `json:"recorded"`
	Replaced int         `json:"replaced"`
	Present  int         `json:"present"`
	Absent   int         `json:"absent"`
	Policy   string      `json:"policy"`
}
