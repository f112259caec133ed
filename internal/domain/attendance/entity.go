package attendance

import (
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/schedule"
)

// Status is the attendance classification for one student on one session day.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// LocationStatus is the outlier flag assigned to a record by the location
// analysis pass. Records without a location sample carry no status.
type LocationStatus string

const (
	LocationNormal  LocationStatus = "normal"
	LocationOutlier LocationStatus = "outlier"
	LocationUnknown LocationStatus = "unknown"
)

// Record is one persisted attendance mark. LocalDay is the calendar day in
// the reference zone; together with StudentID and ClassID it is unique, which
// is what makes a second check-in on the same day fail.
type Record struct {
	ID             string
	StudentID      string
	ClassID        string
	Status         Status
	EventTimestamp time.Time
	LocalDay       time.Time
	Latitude       *float64
	Longitude      *float64
	LocationStatus *LocationStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// StudentName is populated by queries that join the roster; it is not a
	// column of the attendance table.
	StudentName string
}

// HasLocation reports whether the record carries a location sample.
func (r *Record) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Classify determines the attendance status of a check-in at now against the
// session block on that day. Boundaries are inclusive at the start of each
// band: before start+allowance is present, from start+allowance up to (but
// not including) end is late, from end onward is absent.
func Classify(block schedule.Block, now time.Time, loc *time.Location) Status {
	start := block.Start.At(now, loc)
	end := block.End.At(now, loc)
	lateFrom := start.Add(block.LateAllowance)

	switch {
	case now.Before(lateFrom):
		return StatusPresent
	case now.Before(end):
		return StatusLate
	default:
		return StatusAbsent
	}
}
