package attendance

import (
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type MarkAttendanceRequest struct {
	StudentID string    `json:"student_id"`
	ClassID   string    `json:"class_id"`
	Photo     string    `json:"photo,omitempty"`
	Location  *Location `json:"location,omitempty"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StudentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "student_id",
			Message: "student_id is required",
		})
	} else if !validator.IsValidUUID(r.StudentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "student_id",
			Message: "student_id must be a valid UUID",
		})
	}

	if validator.IsEmpty(r.ClassID) {
		errs = append(errs, validator.ValidationError{
			Field:   "class_id",
			Message: "class_id is required",
		})
	} else if !validator.IsValidUUID(r.ClassID) {
		errs = append(errs, validator.ValidationError{
			Field:   "class_id",
			Message: "class_id must be a valid UUID",
		})
	}

	if r.Location != nil {
		if !validator.IsLatitude(r.Location.Latitude) {
			errs = append(errs, validator.ValidationError{
				Field:   "location.latitude",
				Message: "latitude must be between -90 and 90",
			})
		}
		if !validator.IsLongitude(r.Location.Longitude) {
			errs = append(errs, validator.ValidationError{
				Field:   "location.longitude",
				Message: "longitude must be between -180 and 180",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SessionInfo describes the schedule block a check-in resolved against.
type SessionInfo struct {
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	LateAllowance string `json:"late_allowance"`
}

type MarkAttendanceResponse struct {
	ID             string      `json:"id"`
	StudentID      string      `json:"student_id"`
	ClassID        string      `json:"class_id"`
	Status         Status      `json:"status"`
	EventTimestamp time.Time   `json:"event_timestamp"`
	Session        SessionInfo `json:"session"`
}

// RecordResponse is one attendance row in list and history endpoints.
type RecordResponse struct {
	ID             string          `json:"id"`
	StudentID      string          `json:"student_id"`
	StudentName    string          `json:"student_name,omitempty"`
	ClassID        string          `json:"class_id"`
	Status         Status          `json:"status"`
	EventTimestamp *time.Time      `json:"event_timestamp"`
	LocalDay       string          `json:"local_day"`
	LocationStatus *LocationStatus `json:"location_status,omitempty"`
}

// ClassDateSummary aggregates one class-day view.
type ClassDateSummary struct {
	TotalStudents    int `json:"total_students"`
	Present          int `json:"present"`
	Late             int `json:"late"`
	Absent           int `json:"absent"`
	LocationOutliers int `json:"location_outliers"`
}

type ClassDateAttendanceResponse struct {
	ClassID string           `json:"class_id"`
	Date    string           `json:"date"`
	Records []RecordResponse `json:"records"`
	Summary ClassDateSummary `json:"summary"`
}

// ========================================
// OUTLIER DETECTION DTOs
// ========================================

type OutlierResult struct {
	RecordID  string  `json:"record_id"`
	StudentID string  `json:"student_id"`
	Distance  float64 `json:"distance_meters"`
	IsOutlier bool    `json:"is_outlier"`
}

type OutlierDetectionResponse struct {
	ClassID       string          `json:"class_id"`
	Date          string          `json:"date"`
	SampleCount   int             `json:"sample_count"`
	CenterLat     float64         `json:"center_latitude"`
	CenterLon     float64         `json:"center_longitude"`
	MeanDistance  float64         `json:"mean_distance_meters"`
	StdDev        float64         `json:"stddev_meters"`
	Threshold     float64         `json:"threshold_meters"`
	Results       []OutlierResult `json:"results"`
	OutlierCount  int             `json:"outlier_count"`
}

// ========================================
// BACKFILL DTOs
// ========================================

type BackfillResponse struct {
	ClassID  string `json:"class_id"`
	Date     string `json:"date"`
	Inserted int    `json:"inserted"`
}
