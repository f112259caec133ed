package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/class"
	"github.com/classtrack/classtrack-backend-go/internal/domain/schedule"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type classRepository struct {
	db *database.DB
}

func NewClassRepository(db *database.DB) class.Repository {
	return &classRepository{db: db}
}

// GetByID implements class.Repository.
func (c *classRepository) GetByID(ctx context.Context, id string) (*class.Class, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT id, name, code, created_at, updated_at
		FROM classes
		WHERE id = $1
	`

	var cls class.Class
	err := q.QueryRow(ctx, query, id).Scan(
		&cls.ID, &cls.Name, &cls.Code, &cls.CreatedAt, &cls.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, class.ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}

	blocks, err := c.loadBlocks(ctx, cls.ID)
	if err != nil {
		return nil, err
	}
	cls.Blocks = blocks

	return &cls, nil
}

// ListAll implements class.Repository.
func (c *classRepository) ListAll(ctx context.Context) ([]*class.Class, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT id, name, code, created_at, updated_at
		FROM classes
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	defer rows.Close()

	var classes []*class.Class
	for rows.Next() {
		var cls class.Class
		if err := rows.Scan(&cls.ID, &cls.Name, &cls.Code, &cls.CreatedAt, &cls.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, &cls)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read class rows: %w", err)
	}

	for _, cls := range classes {
		blocks, err := c.loadBlocks(ctx, cls.ID)
		if err != nil {
			return nil, err
		}
		cls.Blocks = blocks
	}

	return classes, nil
}

// loadBlocks reads a class's schedule blocks in stored order. Days are a
// comma-separated weekday list, times are "HH:MM" strings.
func (c *classRepository) loadBlocks(ctx context.Context, classID string) ([]schedule.Block, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT days, start_time, end_time, late_allowance_minutes
		FROM class_schedule_blocks
		WHERE class_id = $1
		ORDER BY position
	`

	rows, err := q.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule blocks: %w", err)
	}
	defer rows.Close()

	var blocks []schedule.Block
	for rows.Next() {
		var (
			daysStr   string
			startStr  string
			endStr    string
			allowance int
		)
		if err := rows.Scan(&daysStr, &startStr, &endStr, &allowance); err != nil {
			return nil, fmt.Errorf("failed to scan schedule block: %w", err)
		}

		days, err := schedule.ParseDays(daysStr)
		if err != nil {
			return nil, fmt.Errorf("invalid days for class %s: %w", classID, err)
		}
		start, err := schedule.ParseTimeOfDay(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid start time for class %s: %w", classID, err)
		}
		end, err := schedule.ParseTimeOfDay(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid end time for class %s: %w", classID, err)
		}

		blocks = append(blocks, schedule.Block{
			Days:          days,
			Start:         start,
			End:           end,
			LateAllowance: time.Duration(allowance) * time.Minute,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule block rows: %w", err)
	}

	return blocks, nil
}
