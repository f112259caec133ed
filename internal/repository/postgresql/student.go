package postgresql

import (
	"context"
	"fmt"

	"github.com/classtrack/classtrack-backend-go/internal/domain/student"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type studentRepository struct {
	db *database.DB
}

func NewStudentRepository(db *database.DB) student.Repository {
	return &studentRepository{db: db}
}

// GetByID implements student.Repository.
func (s *studentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT id, name, email, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	var st student.Student
	err := q.QueryRow(ctx, query, id).Scan(
		&st.ID, &st.Name, &st.Email, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, student.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return &st, nil
}

// IsEnrolled implements student.Repository.
func (s *studentRepository) IsEnrolled(ctx context.Context, studentID, classID string) (bool, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND class_id = $2
		)
	`

	var enrolled bool
	if err := q.QueryRow(ctx, query, studentID, classID).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return enrolled, nil
}

// ListEnrolled implements student.Repository.
func (s *studentRepository) ListEnrolled(ctx context.Context, classID string) ([]*student.Student, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT s.id, s.name, s.email, s.created_at, s.updated_at
		FROM students s
		JOIN enrollments e ON e.student_id = s.id
		WHERE e.class_id = $1
		ORDER BY s.name
	`

	rows, err := q.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled students: %w", err)
	}
	defer rows.Close()

	var students []*student.Student
	for rows.Next() {
		var st student.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read student rows: %w", err)
	}

	return students, nil
}
