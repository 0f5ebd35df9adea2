package repository

import (
	"context"

	"github.com/noah-isme/sma-attendance-tracker/internal/models"
)

// RosterRepository keeps the append-only student table.
type RosterRepository struct {
	store *Store
}

// NewRosterRepository constructs a roster repository over the session store.
func NewRosterRepository(store *Store) *RosterRepository {
	return &RosterRepository{store: store}
}

// Create assigns the next sequential id and appends the student.
// Ids are count+1, which only stays unique while students are never removed.
func (r *RosterRepository) Create(ctx context.Context, student *models.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	student.ID = len(r.store.students) + 1
	r.store.byID[student.ID] = len(r.store.students)
	r.store.students = append(r.store.students, *student)
	return nil
}

// List returns students in insertion order.
func (r *RosterRepository) List(ctx context.Context) ([]models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	students := make([]models.Student, len(r.store.students))
	copy(students, r.store.students)
	return students, nil
}

// FindByID returns the student with the given id.
func (r *RosterRepository) FindByID(ctx context.Context, id int) (*models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	idx, ok := r.store.byID[id]
	if !ok {
		return nil, ErrStudentNotFound
	}
	student := r.store.students[idx]
	return &student, nil
}

// Count returns the number of registered students.
func (r *RosterRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.students), nil
}
