package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/classtrack/classtrack-backend-go/internal/domain/class"
	"github.com/classtrack/classtrack-backend-go/internal/domain/schedule"
	"github.com/classtrack/classtrack-backend-go/internal/domain/student"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/faceclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClassID   = "b2f5bb0a-55f7-4a39-b2d1-0d4a18c6e9b4"
	testStudentID = "0c5e9d9e-3db5-4c8e-a46e-9a8a8d2f6f10"
	otherStudent  = "7f1a2b3c-4d5e-4f60-8a9b-0c1d2e3f4a5b"
)

var testLoc = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		panic(err)
	}
	return loc
}()

// fakeAttendanceRepo keeps records in memory and enforces the same
// per-student-per-day uniqueness the database does.
type fakeAttendanceRepo struct {
	records []*attendance.Record
}

func (f *fakeAttendanceRepo) key(r *attendance.Record) string {
	return r.StudentID + "|" + r.ClassID + "|" + r.LocalDay.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) Create(_ context.Context, record *attendance.Record) error {
	for _, existing := range f.records {
		if f.key(existing) == f.key(record) {
			return attendance.ErrAlreadyMarked
		}
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAttendanceRepo) ListByClassAndDay(_ context.Context, classID string, day time.Time) ([]*attendance.Record, error) {
	var out []*attendance.Record
	for _, r := range f.records {
		if r.ClassID == classID && r.LocalDay.Equal(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByStudentAndClass(_ context.Context, studentID, classID string) ([]*attendance.Record, error) {
	var out []*attendance.Record
	for _, r := range f.records {
		if r.StudentID == studentID && r.ClassID == classID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByClass(_ context.Context, classID string) ([]*attendance.Record, error) {
	var out []*attendance.Record
	for _, r := range f.records {
		if r.ClassID == classID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByStudent(_ context.Context, studentID string) ([]*attendance.Record, error) {
	var out []*attendance.Record
	for _, r := range f.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) UpdateLocationStatus(_ context.Context, recordID string, status attendance.LocationStatus) error {
	for _, r := range f.records {
		if r.ID == recordID {
			s := status
			r.LocationStatus = &s
			return nil
		}
	}
	return attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) BulkCreateAbsences(ctx context.Context, records []*attendance.Record) (int, error) {
	inserted := 0
	for _, r := range records {
		if err := f.Create(ctx, r); err == nil {
			inserted++
		}
	}
	return inserted, nil
}

type fakeClassRepo struct {
	classes map[string]*class.Class
}

func (f *fakeClassRepo) GetByID(_ context.Context, id string) (*class.Class, error) {
	cls, ok := f.classes[id]
	if !ok {
		return nil, class.ErrClassNotFound
	}
	return cls, nil
}

func (f *fakeClassRepo) ListAll(_ context.Context) ([]*class.Class, error) {
	var out []*class.Class
	for _, cls := range f.classes {
		out = append(out, cls)
	}
	return out, nil
}

type fakeStudentRepo struct {
	students    map[string]*student.Student
	enrollments map[string][]string // classID -> studentIDs
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	st, ok := f.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return st, nil
}

func (f *fakeStudentRepo) IsEnrolled(_ context.Context, studentID, classID string) (bool, error) {
	for _, id := range f.enrollments[classID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentRepo) ListEnrolled(_ context.Context, classID string) ([]*student.Student, error) {
	var out []*student.Student
	for _, id := range f.enrollments[classID] {
		out = append(out, f.students[id])
	}
	return out, nil
}

type fakeFaceVerifier struct {
	verified bool
	err      error
}

func (f *fakeFaceVerifier) Verify(_ context.Context, studentID, _ string) (*faceclient.VerifyResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &faceclient.VerifyResult{StudentID: studentID, Verified: f.verified}, nil
}

// Monday 09:00-10:00 with a 15 minute allowance.
func mondayClass() *class.Class {
	return &class.Class{
		ID:        testClassID,
		Name:      "Algorithms",
		Code:      "CS201",
		CreatedAt: time.Date(2024, 3, 4, 8, 0, 0, 0, testLoc),
		Blocks: []schedule.Block{{
			Days:          []time.Weekday{time.Monday},
			Start:         schedule.TimeOfDay{Hour: 9},
			End:           schedule.TimeOfDay{Hour: 10},
			LateAllowance: 15 * time.Minute,
		}},
	}
}

func newTestService(attRepo *fakeAttendanceRepo, face *fakeFaceVerifier) (attendance.Service, *fakeStudentRepo) {
	studentRepo := &fakeStudentRepo{
		students: map[string]*student.Student{
			testStudentID: {ID: testStudentID, Name: "Ada"},
			otherStudent:  {ID: otherStudent, Name: "Grace"},
		},
		enrollments: map[string][]string{
			testClassID: {testStudentID, otherStudent},
		},
	}
	classRepo := &fakeClassRepo{classes: map[string]*class.Class{testClassID: mondayClass()}}
	return NewAttendanceService(attRepo, classRepo, studentRepo, face, testLoc), studentRepo
}

func monday(h, m int) time.Time {
	return time.Date(2024, 3, 25, h, m, 0, 0, testLoc)
}

func TestMarkAttendanceClassification(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want attendance.Status
	}{
		{"within allowance", monday(9, 10), attendance.StatusPresent},
		{"after allowance", monday(9, 20), attendance.StatusLate},
		{"after session end", monday(10, 5), attendance.StatusAbsent},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, _ := newTestService(&fakeAttendanceRepo{}, &fakeFaceVerifier{verified: true})

			resp, err := svc.MarkAttendance(context.Background(), &attendance.MarkAttendanceRequest{
				StudentID: testStudentID,
				ClassID:   testClassID,
			}, c.now)
			require.NoError(t, err)
			assert.Equal(t, c.want, resp.Status)
			assert.Equal(t, "2024-03-25", resp.Session.Date)
			assert.Equal(t, "09:00", resp.Session.StartTime)
		})
	}
}

func TestMarkAttendanceNoSessionToday(t *testing.T) {
	svc, _ := newTestService(&fakeAttendanceRepo{}, &fakeFaceVerifier{verified: true})

	// Tuesday: the class only meets Mondays.
	tuesday := time.Date(2024, 3, 26, 9, 10, 0, 0, testLoc)
	_, err := svc.MarkAttendance(context.Background(), &attendance.MarkAttendanceRequest{
		StudentID: testStudentID,
		ClassID:   testClassID,
	}, tuesday)
	assert.ErrorIs(t, err, attendance.ErrNoSessionToday)
}

func TestMarkAttendanceNotEnrolled(t *testing.T) {
	svc, studentRepo := newTestService(&fakeAttendanceRepo{}, &fakeFaceVerifier{verified: true})
	studentRepo.enrollments[testClassID] = []string{otherStudent}

	_, err := svc.MarkAttendance(context.Background(), &attendance.MarkAttendanceRequest{
		StudentID: testStudentID,
		ClassID:   testClassID,
	}, monday(9, 10))
	assert.ErrorIs(t, err, attendance.ErrNotEnrolled)
}

func TestMarkAttendanceDuplicate(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc, _ := newTestService(repo, &fakeFaceVerifier{verified: true})
	ctx := context.Background()

	req := &attendance.MarkAttendanceRequest{StudentID: testStudentID, ClassID: testClassID}
	_, err := svc.MarkAttendance(ctx, req, monday(9, 10))
	require.NoError(t, err)

	_, err = svc.MarkAttendance(ctx, req, monday(9, 30))
	assert.ErrorIs(t, err, attendance.ErrAlreadyMarked)
	assert.Len(t, repo.records, 1)
}

func TestMarkAttendanceFaceMismatch(t *testing.T) {
	svc, _ := newTestService(&fakeAttendanceRepo{}, &fakeFaceVerifier{verified: false})

	_, err := svc.MarkAttendance(context.Background(), &attendance.MarkAttendanceRequest{
		StudentID: testStudentID,
		ClassID:   testClassID,
		Photo:     "base64photo",
	}, monday(9, 10))
	assert.ErrorIs(t, err, attendance.ErrFaceVerificationFailed)
}

// An unreachable face service must never pass as a successful verification.
func TestMarkAttendanceFaceServiceDown(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc, _ := newTestService(repo, &fakeFaceVerifier{err: errors.New("connection refused")})

	_, err := svc.MarkAttendance(context.Background(), &attendance.MarkAttendanceRequest{
		StudentID: testStudentID,
		ClassID:   testClassID,
		Photo:     "base64photo",
	}, monday(9, 10))
	assert.ErrorIs(t, err, attendance.ErrFaceServiceUnavailable)
	assert.Empty(t, repo.records)
}

func TestMarkAttendanceSkipsFaceCheckWithoutPhoto(t *testing.T) {
	svc, _ := newTestService(&fakeAttendanceRepo{}, &fakeFaceVerifier{err: errors.New("connection refused")})

	_, err := svc.MarkAttendance(context.Background(), &attendance.MarkAttendanceRequest{
		StudentID: testStudentID,
		ClassID:   testClassID,
	}, monday(9, 10))
	assert.NoError(t, err)
}

func TestGetClassAttendanceForDateFillsMissingStudents(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc, _ := newTestService(repo, &fakeFaceVerifier{verified: true})
	ctx := context.Background()

	_, err := svc.MarkAttendance(ctx, &attendance.MarkAttendanceRequest{
		StudentID: testStudentID,
		ClassID:   testClassID,
	}, monday(9, 10))
	require.NoError(t, err)

	resp, err := svc.GetClassAttendanceForDate(ctx, testClassID, monday(0, 0), monday(12, 0))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Summary.TotalStudents)
	assert.Equal(t, 1, resp.Summary.Present)
	assert.Equal(t, 1, resp.Summary.Absent)
	require.Len(t, resp.Records, 2)

	var missing *attendance.RecordResponse
	for i := range resp.Records {
		if resp.Records[i].StudentID == otherStudent {
			missing = &resp.Records[i]
		}
	}
	require.NotNil(t, missing)
	assert.Equal(t, attendance.StatusAbsent, missing.Status)
	assert.Nil(t, missing.EventTimestamp)

	// The roster view never writes records.
	assert.Len(t, repo.records, 1)
}

func TestDetectLocationOutliersInsufficientData(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc, _ := newTestService(repo, &fakeFaceVerifier{verified: true})

	lat, lon := 13.7563, 100.5018
	repo.records = append(repo.records, &attendance.Record{
		ID: "r1", StudentID: testStudentID, ClassID: testClassID,
		Status: attendance.StatusPresent, LocalDay: monday(0, 0),
		Latitude: &lat, Longitude: &lon,
	})

	_, err := svc.DetectLocationOutliers(context.Background(), testClassID, monday(0, 0))
	assert.ErrorIs(t, err, attendance.ErrInsufficientData)
}

func TestBackfillAbsences(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc, _ := newTestService(repo, &fakeFaceVerifier{verified: true})
	ctx := context.Background()

	// Session still open: refuse.
	_, err := svc.BackfillAbsences(ctx, testClassID, monday(0, 0), monday(9, 30))
	assert.ErrorIs(t, err, attendance.ErrSessionNotEnded)

	// One student checked in live; the other gets backfilled.
	_, err = svc.MarkAttendance(ctx, &attendance.MarkAttendanceRequest{
		StudentID: testStudentID,
		ClassID:   testClassID,
	}, monday(9, 10))
	require.NoError(t, err)

	resp, err := svc.BackfillAbsences(ctx, testClassID, monday(0, 0), monday(11, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Inserted)

	// Absent rows are stamped at the session end.
	records, _ := repo.ListByStudentAndClass(ctx, otherStudent, testClassID)
	require.Len(t, records, 1)
	assert.Equal(t, attendance.StatusAbsent, records[0].Status)
	assert.True(t, records[0].EventTimestamp.Equal(monday(10, 0)))

	// Re-running inserts nothing new.
	resp, err = svc.BackfillAbsences(ctx, testClassID, monday(0, 0), monday(11, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Inserted)
}

func TestBackfillOnNonSessionDay(t *testing.T) {
	svc, _ := newTestService(&fakeAttendanceRepo{}, &fakeFaceVerifier{verified: true})

	tuesday := time.Date(2024, 3, 26, 0, 0, 0, 0, testLoc)
	_, err := svc.BackfillAbsences(context.Background(), testClassID, tuesday, tuesday.Add(23*time.Hour))
	assert.ErrorIs(t, err, attendance.ErrNoSessionToday)
}
