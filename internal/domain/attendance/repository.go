package attendance

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts a record; the unique constraint on
	// (student_id, class_id, local_day) makes duplicate check-ins fail with
	// ErrAlreadyMarked.
	Create(ctx context.Context, record *Record) error

	// ListByClassAndDay returns records for one class on one local day,
	// joined with student names, ordered by event timestamp.
	ListByClassAndDay(ctx context.Context, classID string, day time.Time) ([]*Record, error)

	// ListByStudentAndClass returns a student's records in one class,
	// oldest first.
	ListByStudentAndClass(ctx context.Context, studentID, classID string) ([]*Record, error)

	// ListByClass returns a class's full history, newest first.
	ListByClass(ctx context.Context, classID string) ([]*Record, error)

	// ListByStudent returns a student's history across classes, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]*Record, error)

	// UpdateLocationStatus persists the outlier flag for one record.
	UpdateLocationStatus(ctx context.Context, recordID string, status LocationStatus) error

	// BulkCreateAbsences inserts absent records, skipping students that
	// already have a record for the day, and returns how many were inserted.
	BulkCreateAbsences(ctx context.Context, records []*Record) (int, error)
}
