package report

import (
	"testing"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func rec(status attendance.Status) *attendance.Record {
	return &attendance.Record{Status: status}
}

func TestAggregate(t *testing.T) {
	records := []*attendance.Record{
		rec(attendance.StatusPresent),
		rec(attendance.StatusPresent),
		rec(attendance.StatusLate),
	}

	rep := Aggregate(5, records)
	assert.Equal(t, 5, rep.TotalExpected)
	assert.Equal(t, 2, rep.OnTime)
	assert.Equal(t, 1, rep.Late)
	assert.Equal(t, 2, rep.Absent)
	assert.Equal(t, rep.TotalExpected, rep.OnTime+rep.Late+rep.Absent)
}

func TestAggregateNoRecords(t *testing.T) {
	rep := Aggregate(4, nil)
	assert.Equal(t, 4, rep.TotalExpected)
	assert.Equal(t, 0, rep.OnTime)
	assert.Equal(t, 0, rep.Late)
	assert.Equal(t, 4, rep.Absent)
}

func TestAggregateIdempotent(t *testing.T) {
	records := []*attendance.Record{
		rec(attendance.StatusPresent),
		rec(attendance.StatusAbsent),
	}

	first := Aggregate(3, records)
	second := Aggregate(3, records)
	assert.Equal(t, first, second)
}

// Backfilled absent rows must not double-count against the derived absences.
func TestAggregateRecordedAbsences(t *testing.T) {
	records := []*attendance.Record{
		rec(attendance.StatusPresent),
		rec(attendance.StatusAbsent),
		rec(attendance.StatusAbsent),
	}

	rep := Aggregate(3, records)
	assert.Equal(t, 3, rep.TotalExpected)
	assert.Equal(t, 1, rep.OnTime)
	assert.Equal(t, 2, rep.Absent)
	assert.Equal(t, rep.TotalExpected, rep.OnTime+rep.Late+rep.Absent)
}

// More check-ins than the calendar expects can only happen when the schedule
// was edited after the fact; the invariant still has to hold.
func TestAggregateMoreRecordsThanExpected(t *testing.T) {
	records := []*attendance.Record{
		rec(attendance.StatusPresent),
		rec(attendance.StatusPresent),
		rec(attendance.StatusLate),
	}

	rep := Aggregate(2, records)
	assert.Equal(t, rep.TotalExpected, rep.OnTime+rep.Late+rep.Absent)
	assert.Equal(t, 3, rep.TotalExpected)
	assert.Equal(t, 0, rep.Absent)
}
