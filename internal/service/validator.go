package service

import (
	"github.com/noah-isme/sma-attendance-tracker/internal/models"
	"github.com/noah-isme/sma-attendance-tracker/pkg/validation"
)

// NewValidator returns the request validator shared by the services.
func NewValidator() *validation.Validator {
	return validation.New(func(raw string) bool {
		_, ok := models.ParseAttendanceStatus(raw)
		return ok
	})
}
