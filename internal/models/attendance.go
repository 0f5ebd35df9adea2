package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// ParseAttendanceStatus matches raw case-insensitively against the known statuses.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(raw), string(AttendanceStatusPresent)):
		return AttendanceStatusPresent, true
	case strings.EqualFold(strings.TrimSpace(raw), string(AttendanceStatusAbsent)):
		return AttendanceStatusAbsent, true
	default:
		return "", false
	}
}

// Date is a calendar day without a time component.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AttendanceRecord is a single ledger row.
type AttendanceRecord struct {
	Date      Date             `json:"date"`
	StudentID int              `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
}

// SeriesPoint is one entry of a student's chronological status series.
type SeriesPoint struct {
	Date   Date             `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// AttendanceSummary summarises counts for a student.
type AttendanceSummary struct {
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}
