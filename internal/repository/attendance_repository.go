package repository

import (
	"context"
	"sort"

	"github.com/noah-isme/sma-attendance-tracker/internal/models"
)

// RecordResult reports how a batch was applied to the ledger.
type RecordResult struct {
	Appended int
	Replaced int
}

type recordKey struct {
	date      string
	studentID int
}

// AttendanceRepository keeps the attendance ledger.
type AttendanceRepository struct {
	store *Store
}

// NewAttendanceRepository constructs a ledger repository over the session store.
func NewAttendanceRepository(store *Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

// Record applies a batch as a single unit: every student id is checked against
// the roster before the ledger changes, and the new ledger is swapped in at once.
// With replace set, existing rows sharing (date, student_id) with the batch are dropped.
func (r *AttendanceRepository) Record(ctx context.Context, records []models.AttendanceRecord, replace bool) (RecordResult, error) {
	if err := ctx.Err(); err != nil {
		return RecordResult{}, err
	}
	if len(records) == 0 {
		return RecordResult{}, nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var missing []int
	incoming := make(map[recordKey]struct{}, len(records))
	for _, rec := range records {
		if _, ok := r.store.byID[rec.StudentID]; !ok {
			missing = append(missing, rec.StudentID)
		}
		incoming[recordKey{date: rec.Date.String(), studentID: rec.StudentID}] = struct{}{}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return RecordResult{}, &MissingStudentsError{IDs: missing}
	}

	result := RecordResult{Appended: len(records)}
	next := make([]models.AttendanceRecord, 0, len(r.store.records)+len(records))
	for _, existing := range r.store.records {
		if replace {
			if _, ok := incoming[recordKey{date: existing.Date.String(), studentID: existing.StudentID}]; ok {
				result.Replaced++
				continue
			}
		}
		next = append(next, existing)
	}
	next = append(next, records...)
	r.store.records = next
	return result, nil
}

// ForStudent returns the student's records ordered by date. Records on the
// same date keep their insertion order.
func (r *AttendanceRepository) ForStudent(ctx context.Context, studentID int) ([]models.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	var rows []models.AttendanceRecord
	for _, rec := range r.store.records {
		if rec.StudentID == studentID {
			rows = append(rows, rec)
		}
	}
	r.store.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date.Time)
	})
	return rows, nil
}

// All returns the full ledger in insertion order.
func (r *AttendanceRepository) All(ctx context.Context) ([]models.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rows := make([]models.AttendanceRecord, len(r.store.records))
	copy(rows, r.store.records)
	return rows, nil
}
