package student

import "context"

type Repository interface {
	// GetByID returns ErrStudentNotFound when no student exists with the
	// given ID.
	GetByID(ctx context.Context, id string) (*Student, error)

	// IsEnrolled reports whether the student is enrolled in the class.
	IsEnrolled(ctx context.Context, studentID, classID string) (bool, error)

	// ListEnrolled returns the full roster of a class ordered by name.
	ListEnrolled(ctx context.Context, classID string) ([]*Student, error)
}
