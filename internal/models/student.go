package models

// Student represents a learner registered on the roster.
type Student struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ClassLabel string `json:"class"`
}

// StudentRate pairs a student with their attendance rate for roster listings.
type StudentRate struct {
	Student
	AttendanceRate        float64 `json:"attendance_rate"`
	AttendanceRateDisplay string  `json:"attendance_rate_display"`
}
