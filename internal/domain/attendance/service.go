package attendance

import (
	"context"
	"time"
)

type Service interface {
	// MarkAttendance runs the check-in pipeline: enrollment check, optional
	// face verification, session resolution, classification, insert.
	MarkAttendance(ctx context.Context, req *MarkAttendanceRequest, now time.Time) (*MarkAttendanceResponse, error)

	// GetClassAttendanceForDate returns the full roster view for one class
	// day, with enrolled students who never checked in reported absent.
	GetClassAttendanceForDate(ctx context.Context, classID string, date time.Time, now time.Time) (*ClassDateAttendanceResponse, error)

	// GetClassAttendance returns a class's attendance history, newest first.
	GetClassAttendance(ctx context.Context, classID string) ([]RecordResponse, error)

	// GetStudentAttendance returns a student's history across classes.
	GetStudentAttendance(ctx context.Context, studentID string) ([]RecordResponse, error)

	// DetectLocationOutliers runs the centroid/stddev analysis over one class
	// day and persists each record's location status.
	DetectLocationOutliers(ctx context.Context, classID string, date time.Time) (*OutlierDetectionResponse, error)

	// BackfillAbsences inserts absent records for enrolled students without a
	// record on a past session date. Fails while the session is still open.
	BackfillAbsences(ctx context.Context, classID string, date time.Time, now time.Time) (*BackfillResponse, error)
}
