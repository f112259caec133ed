package report

import (
	"context"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/classtrack/classtrack-backend-go/internal/domain/class"
	"github.com/classtrack/classtrack-backend-go/internal/domain/report"
	"github.com/classtrack/classtrack-backend-go/internal/domain/schedule"
	"github.com/classtrack/classtrack-backend-go/internal/domain/student"
)

type ReportServiceImpl struct {
	attendanceRepo attendance.Repository
	classRepo      class.Repository
	studentRepo    student.Repository
	loc            *time.Location
}

func NewReportService(
	attendanceRepo attendance.Repository,
	classRepo class.Repository,
	studentRepo student.Repository,
	loc *time.Location,
) report.Service {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		classRepo:      classRepo,
		studentRepo:    studentRepo,
		loc:            loc,
	}
}

// BuildReport implements report.Service.
func (r *ReportServiceImpl) BuildReport(ctx context.Context, studentID, classID string, now time.Time) (*report.Report, error) {
	cls, err := r.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	if _, err := r.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	enrolled, err := r.studentRepo.IsEnrolled(ctx, studentID, classID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, attendance.ErrNotEnrolled
	}

	records, err := r.attendanceRepo.ListByStudentAndClass(ctx, studentID, classID)
	if err != nil {
		return nil, err
	}

	expected := schedule.Occurrences(cls.Blocks, cls.CreatedAt, now, now, r.loc)

	rep := Aggregate(len(expected), records)
	rep.StudentID = studentID
	rep.ClassID = classID
	return rep, nil
}

// Aggregate reconciles the expected session count against the recorded
// check-ins. Every expected session without an on-time or late record counts
// as absent, so the three buckets always sum to the expected total. Recorded
// rows beyond the expected window (a record on a day the calendar no longer
// yields) still count toward their bucket, and the total grows to keep the
// sum invariant.
func Aggregate(totalExpected int, records []*attendance.Record) *report.Report {
	rep := &report.Report{TotalExpected: totalExpected}

	recordedAbsent := 0
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			rep.OnTime++
		case attendance.StatusLate:
			rep.Late++
		case attendance.StatusAbsent:
			recordedAbsent++
		}
	}

	rep.Absent = rep.TotalExpected - rep.OnTime - rep.Late
	if rep.Absent < 0 {
		rep.Absent = 0
		rep.TotalExpected = rep.OnTime + rep.Late
	}
	if recordedAbsent > rep.Absent {
		rep.Absent = recordedAbsent
		rep.TotalExpected = rep.OnTime + rep.Late + rep.Absent
	}

	return rep
}
