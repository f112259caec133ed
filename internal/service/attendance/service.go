package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/classtrack/classtrack-backend-go/internal/domain/class"
	"github.com/classtrack/classtrack-backend-go/internal/domain/schedule"
	"github.com/classtrack/classtrack-backend-go/internal/domain/student"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/faceclient"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/geo"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/metrics"
	"github.com/google/uuid"
)

const (
	// Live view consensus: a sample is suspicious when fewer than half of the
	// other samples are within 50 meters of it.
	consensusThresholdMeters = 50.0
	consensusMinFraction     = 0.5

	// Persisting pass: flag samples beyond mean + 2 stddev from the centroid.
	deviationSigmas = 2.0
)

// FaceVerifier is the face-match collaborator contract. An error means no
// verdict was reached; a false result is a definitive mismatch.
type FaceVerifier interface {
	Verify(ctx context.Context, studentID, photo string) (*faceclient.VerifyResult, error)
}

type AttendanceServiceImpl struct {
	attendance.Repository
	classRepo    class.Repository
	studentRepo  student.Repository
	faceVerifier FaceVerifier
	loc          *time.Location
}

func NewAttendanceService(
	attendanceRepo attendance.Repository,
	classRepo class.Repository,
	studentRepo student.Repository,
	faceVerifier FaceVerifier,
	loc *time.Location,
) attendance.Service {
	return &AttendanceServiceImpl{
		Repository:   attendanceRepo,
		classRepo:    classRepo,
		studentRepo:  studentRepo,
		faceVerifier: faceVerifier,
		loc:          loc,
	}
}

// MarkAttendance implements attendance.Service.
func (a *AttendanceServiceImpl) MarkAttendance(ctx context.Context, req *attendance.MarkAttendanceRequest, now time.Time) (*attendance.MarkAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cls, err := a.classRepo.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	if _, err := a.studentRepo.GetByID(ctx, req.StudentID); err != nil {
		return nil, err
	}

	enrolled, err := a.studentRepo.IsEnrolled(ctx, req.StudentID, req.ClassID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		metrics.CheckInRejections.WithLabelValues("not_enrolled").Inc()
		return nil, attendance.ErrNotEnrolled
	}

	if req.Photo != "" {
		result, err := a.faceVerifier.Verify(ctx, req.StudentID, req.Photo)
		if err != nil {
			// An unreachable verifier is never treated as a pass.
			metrics.CheckInRejections.WithLabelValues("face_service_unavailable").Inc()
			return nil, fmt.Errorf("%w: %w", attendance.ErrFaceServiceUnavailable, err)
		}
		if !result.Verified {
			metrics.CheckInRejections.WithLabelValues("face_mismatch").Inc()
			return nil, attendance.ErrFaceVerificationFailed
		}
	}

	nowLocal := now.In(a.loc)
	block, ok := schedule.FindBlockForDay(cls.Blocks, nowLocal.Weekday())
	if !ok {
		metrics.CheckInRejections.WithLabelValues("no_session").Inc()
		return nil, attendance.ErrNoSessionToday
	}

	status := attendance.Classify(block, nowLocal, a.loc)

	record := &attendance.Record{
		ID:             uuid.NewString(),
		StudentID:      req.StudentID,
		ClassID:        req.ClassID,
		Status:         status,
		EventTimestamp: now,
		LocalDay:       schedule.DayOf(now, a.loc),
	}
	if req.Location != nil {
		lat, lon := req.Location.Latitude, req.Location.Longitude
		record.Latitude = &lat
		record.Longitude = &lon
	}

	if err := a.Repository.Create(ctx, record); err != nil {
		if errors.Is(err, attendance.ErrAlreadyMarked) {
			metrics.CheckInRejections.WithLabelValues("already_marked").Inc()
		}
		return nil, err
	}

	metrics.CheckIns.WithLabelValues(string(status)).Inc()
	slog.Info("Attendance marked",
		"student_id", record.StudentID,
		"class_id", record.ClassID,
		"status", record.Status,
		"local_day", record.LocalDay.Format("2006-01-02"))

	return &attendance.MarkAttendanceResponse{
		ID:             record.ID,
		StudentID:      record.StudentID,
		ClassID:        record.ClassID,
		Status:         record.Status,
		EventTimestamp: record.EventTimestamp,
		Session: attendance.SessionInfo{
			Date:          record.LocalDay.Format("2006-01-02"),
			StartTime:     block.Start.String(),
			EndTime:       block.End.String(),
			LateAllowance: block.LateAllowance.String(),
		},
	}, nil
}

// GetClassAttendanceForDate implements attendance.Service. Enrolled students
// without a record are reported absent with no timestamp; nothing is written.
func (a *AttendanceServiceImpl) GetClassAttendanceForDate(ctx context.Context, classID string, date time.Time, now time.Time) (*attendance.ClassDateAttendanceResponse, error) {
	cls, err := a.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	day := schedule.DayOf(date, a.loc)
	if _, ok := schedule.FindBlockForDay(cls.Blocks, day.Weekday()); !ok {
		return nil, attendance.ErrNoSessionToday
	}

	records, err := a.Repository.ListByClassAndDay(ctx, classID, day)
	if err != nil {
		return nil, err
	}

	roster, err := a.studentRepo.ListEnrolled(ctx, classID)
	if err != nil {
		return nil, err
	}

	liveStatuses := liveLocationStatuses(records)

	resp := &attendance.ClassDateAttendanceResponse{
		ClassID: classID,
		Date:    day.Format("2006-01-02"),
		Summary: attendance.ClassDateSummary{TotalStudents: len(roster)},
	}

	recorded := make(map[string]*attendance.Record, len(records))
	for _, r := range records {
		recorded[r.StudentID] = r
	}

	for _, st := range roster {
		r, ok := recorded[st.ID]
		if !ok {
			resp.Records = append(resp.Records, attendance.RecordResponse{
				StudentID:   st.ID,
				StudentName: st.Name,
				ClassID:     classID,
				Status:      attendance.StatusAbsent,
				LocalDay:    day.Format("2006-01-02"),
			})
			resp.Summary.Absent++
			continue
		}

		ts := r.EventTimestamp
		row := attendance.RecordResponse{
			ID:             r.ID,
			StudentID:      r.StudentID,
			StudentName:    st.Name,
			ClassID:        r.ClassID,
			Status:         r.Status,
			EventTimestamp: &ts,
			LocalDay:       day.Format("2006-01-02"),
		}
		if ls, ok := liveStatuses[r.ID]; ok {
			row.LocationStatus = &ls
			if ls == attendance.LocationOutlier {
				resp.Summary.LocationOutliers++
			}
		}
		resp.Records = append(resp.Records, row)

		switch r.Status {
		case attendance.StatusPresent:
			resp.Summary.Present++
		case attendance.StatusLate:
			resp.Summary.Late++
		case attendance.StatusAbsent:
			resp.Summary.Absent++
		}
	}

	return resp, nil
}

// liveLocationStatuses computes a non-persisted outlier view by pairwise
// consensus over the day's located samples. With fewer than two samples every
// located record is Unknown.
func liveLocationStatuses(records []*attendance.Record) map[string]attendance.LocationStatus {
	statuses := make(map[string]attendance.LocationStatus)

	var located []*attendance.Record
	var points []geo.Point
	for _, r := range records {
		if r.HasLocation() {
			located = append(located, r)
			points = append(points, geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude})
		}
	}

	outliers, ok := geo.PairwiseConsensus(points, consensusThresholdMeters, consensusMinFraction)
	if !ok {
		for _, r := range located {
			statuses[r.ID] = attendance.LocationUnknown
		}
		return statuses
	}

	for i, r := range located {
		if outliers[i] {
			statuses[r.ID] = attendance.LocationOutlier
		} else {
			statuses[r.ID] = attendance.LocationNormal
		}
	}
	return statuses
}

// GetClassAttendance implements attendance.Service.
func (a *AttendanceServiceImpl) GetClassAttendance(ctx context.Context, classID string) ([]attendance.RecordResponse, error) {
	if _, err := a.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}

	records, err := a.Repository.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return toRecordResponses(records), nil
}

// GetStudentAttendance implements attendance.Service.
func (a *AttendanceServiceImpl) GetStudentAttendance(ctx context.Context, studentID string) ([]attendance.RecordResponse, error) {
	if _, err := a.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	records, err := a.Repository.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return toRecordResponses(records), nil
}

func toRecordResponses(records []*attendance.Record) []attendance.RecordResponse {
	out := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		ts := r.EventTimestamp
		out = append(out, attendance.RecordResponse{
			ID:             r.ID,
			StudentID:      r.StudentID,
			StudentName:    r.StudentName,
			ClassID:        r.ClassID,
			Status:         r.Status,
			EventTimestamp: &ts,
			LocalDay:       r.LocalDay.Format("2006-01-02"),
			LocationStatus: r.LocationStatus,
		})
	}
	return out
}

// DetectLocationOutliers implements attendance.Service. Runs the centroid
// deviation analysis over one class day and persists the verdicts. Re-running
// the pass recomputes from the same samples, so it is idempotent.
func (a *AttendanceServiceImpl) DetectLocationOutliers(ctx context.Context, classID string, date time.Time) (*attendance.OutlierDetectionResponse, error) {
	if _, err := a.classRepo.GetByID(ctx, classID); err != nil {
		return nil, err
	}

	day := schedule.DayOf(date, a.loc)
	records, err := a.Repository.ListByClassAndDay(ctx, classID, day)
	if err != nil {
		return nil, err
	}

	var located []*attendance.Record
	var points []geo.Point
	for _, r := range records {
		if r.HasLocation() {
			located = append(located, r)
			points = append(points, geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude})
		}
	}

	analysis, err := geo.CentroidDeviation(points, deviationSigmas)
	if err != nil {
		if errors.Is(err, geo.ErrInsufficientSamples) {
			return nil, fmt.Errorf("%w: have %d located samples, need 3", attendance.ErrInsufficientData, len(points))
		}
		return nil, err
	}

	resp := &attendance.OutlierDetectionResponse{
		ClassID:      classID,
		Date:         day.Format("2006-01-02"),
		SampleCount:  len(located),
		CenterLat:    analysis.Center.Latitude,
		CenterLon:    analysis.Center.Longitude,
		MeanDistance: analysis.MeanDistance,
		StdDev:       analysis.StdDev,
		Threshold:    analysis.Threshold,
	}

	for i, r := range located {
		status := attendance.LocationNormal
		if analysis.Outliers[i] {
			status = attendance.LocationOutlier
			resp.OutlierCount++
		}
		if err := a.Repository.UpdateLocationStatus(ctx, r.ID, status); err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, attendance.OutlierResult{
			RecordID:  r.ID,
			StudentID: r.StudentID,
			Distance:  analysis.Distances[i],
			IsOutlier: analysis.Outliers[i],
		})
	}

	metrics.OutlierPasses.Inc()
	slog.Info("Location outlier pass completed",
		"class_id", classID,
		"date", resp.Date,
		"samples", resp.SampleCount,
		"outliers", resp.OutlierCount)

	return resp, nil
}

// BackfillAbsences implements attendance.Service. Absent rows are stamped at
// the session's end time; the unique constraint keeps live check-ins intact.
func (a *AttendanceServiceImpl) BackfillAbsences(ctx context.Context, classID string, date time.Time, now time.Time) (*attendance.BackfillResponse, error) {
	cls, err := a.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	day := schedule.DayOf(date, a.loc)
	block, ok := schedule.FindBlockForDay(cls.Blocks, day.Weekday())
	if !ok {
		return nil, attendance.ErrNoSessionToday
	}

	sessionEnd := block.End.At(day, a.loc)
	if now.Before(sessionEnd) {
		return nil, attendance.ErrSessionNotEnded
	}

	roster, err := a.studentRepo.ListEnrolled(ctx, classID)
	if err != nil {
		return nil, err
	}

	records := make([]*attendance.Record, 0, len(roster))
	for _, st := range roster {
		records = append(records, &attendance.Record{
			ID:             uuid.NewString(),
			StudentID:      st.ID,
			ClassID:        classID,
			Status:         attendance.StatusAbsent,
			EventTimestamp: sessionEnd,
			LocalDay:       day,
		})
	}

	inserted, err := a.Repository.BulkCreateAbsences(ctx, records)
	if err != nil {
		return nil, err
	}

	metrics.BackfilledAbsences.Add(float64(inserted))
	slog.Info("Absences backfilled",
		"class_id", classID,
		"date", day.Format("2006-01-02"),
		"inserted", inserted,
		"roster", len(roster))

	return &attendance.BackfillResponse{
		ClassID:  classID,
		Date:     day.Format("2006-01-02"),
		Inserted: inserted,
	}, nil
}
