package class

import (
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/schedule"
)

// Class is a course with a weekly meeting schedule. CreatedAt anchors the
// start of the reporting window: occurrences before it never count.
type Class struct {
	ID        string
	Name      string
	Code      string
	Blocks    []schedule.Block
	CreatedAt time.Time
	UpdatedAt time.Time
}
