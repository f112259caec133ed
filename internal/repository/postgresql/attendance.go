package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.student_id, a.class_id, a.status, a.event_timestamp, a.local_day,
	a.latitude, a.longitude, a.location_status, a.created_at, a.updated_at`

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, record *attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, student_id, class_id, status, event_timestamp, local_day,
			latitude, longitude, location_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID,
		record.StudentID,
		record.ClassID,
		record.Status,
		record.EventTimestamp,
		record.LocalDay,
		record.Latitude,
		record.Longitude,
		record.LocationStatus,
	).Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return attendance.ErrAlreadyMarked
		}
		return fmt.Errorf("failed to create attendance record: %w", err)
	}

	return nil
}

// ListByClassAndDay implements attendance.Repository.
func (a *attendanceRepository) ListByClassAndDay(ctx context.Context, classID string, day time.Time) ([]*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT` + attendanceColumns + `, s.name
		FROM attendances a
		JOIN students s ON s.id = a.student_id
		WHERE a.class_id = $1
		  AND a.local_day = $2
		ORDER BY a.event_timestamp
	`

	rows, err := q.Query(ctx, query, classID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for class day: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, true)
}

// ListByStudentAndClass implements attendance.Repository.
func (a *attendanceRepository) ListByStudentAndClass(ctx context.Context, studentID, classID string) ([]*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT` + attendanceColumns + `
		FROM attendances a
		WHERE a.student_id = $1
		  AND a.class_id = $2
		ORDER BY a.local_day
	`

	rows, err := q.Query(ctx, query, studentID, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for student in class: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, false)
}

// ListByClass implements attendance.Repository.
func (a *attendanceRepository) ListByClass(ctx context.Context, classID string) ([]*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT` + attendanceColumns + `, s.name
		FROM attendances a
		JOIN students s ON s.id = a.student_id
		WHERE a.class_id = $1
		ORDER BY a.local_day DESC, a.event_timestamp DESC
	`

	rows, err := q.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list class attendance: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, true)
}

// ListByStudent implements attendance.Repository.
func (a *attendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT` + attendanceColumns + `
		FROM attendances a
		WHERE a.student_id = $1
		ORDER BY a.local_day DESC, a.event_timestamp DESC
	`

	rows, err := q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student attendance: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows, false)
}

// UpdateLocationStatus implements attendance.Repository.
func (a *attendanceRepository) UpdateLocationStatus(ctx context.Context, recordID string, status attendance.LocationStatus) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET location_status = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, recordID, status)
	if err != nil {
		return fmt.Errorf("failed to update location status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// BulkCreateAbsences implements attendance.Repository. ON CONFLICT DO NOTHING
// keeps a live check-in that won the race intact.
func (a *attendanceRepository) BulkCreateAbsences(ctx context.Context, records []*attendance.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, student_id, class_id, status, event_timestamp, local_day
		) VALUES (
			$1, $2, $3, $4, $5, $6
		) ON CONFLICT (student_id, class_id, local_day) DO NOTHING
	`

	inserted := 0
	for _, record := range records {
		tag, err := q.Exec(ctx, query,
			record.ID,
			record.StudentID,
			record.ClassID,
			record.Status,
			record.EventTimestamp,
			record.LocalDay,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert absence record: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

func scanRecords(rows pgx.Rows, withName bool) ([]*attendance.Record, error) {
	var records []*attendance.Record
	for rows.Next() {
		var record attendance.Record
		dest := []any{
			&record.ID, &record.StudentID, &record.ClassID, &record.Status,
			&record.EventTimestamp, &record.LocalDay,
			&record.Latitude, &record.Longitude, &record.LocationStatus,
			&record.CreatedAt, &record.UpdatedAt,
		}
		if withName {
			dest = append(dest, &record.StudentName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance rows: %w", err)
	}
	return records, nil
}
