package repository

import (
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/sma-attendance-tracker/internal/models"
)

// ErrStudentNotFound is returned when a student id is not on the roster.
var ErrStudentNotFound = errors.New("student not found")

// MissingStudentsError lists ids referenced by a write that are not on the roster.
type MissingStudentsError struct {
	IDs []int
}

func (e *MissingStudentsError) Error() string {
	return fmt.Sprintf("unknown student ids %v", e.IDs)
}

// Is lets callers match the error with ErrStudentNotFound.
func (e *MissingStudentsError) Is(target error) bool {
	return target == ErrStudentNotFound
}

// Store is the session state shared by the roster and the ledger. It lives
// for the lifetime of the process and is owned by whoever builds the router.
type Store struct {
	mu       sync.RWMutex
	students []models.Student
	byID     map[int]int // student id -> index in students
	records  []models.AttendanceRecord
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{byID: make(map[int]int)}
}
