package report

import (
	"context"
	"time"
)

type Service interface {
	// BuildReport reconciles the class's expected sessions since its
	// creation against the student's recorded attendance as of now.
	BuildReport(ctx context.Context, studentID, classID string, now time.Time) (*Report, error)
}
