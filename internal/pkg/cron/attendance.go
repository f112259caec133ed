package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/classtrack/classtrack-backend-go/internal/domain/class"
)

// AttendanceJobs holds the nightly absence sweep: students enrolled in a
// class who never checked in on a session day get an absent record once the
// day is over.
type AttendanceJobs struct {
	classRepo     class.Repository
	attendanceSvc attendance.Service
	loc           *time.Location
}

func NewAttendanceJobs(classRepo class.Repository, attendanceSvc attendance.Service, loc *time.Location) *AttendanceJobs {
	return &AttendanceJobs{
		classRepo:     classRepo,
		attendanceSvc: attendanceSvc,
		loc:           loc,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("backfill_absences", 1*time.Hour, j.BackfillYesterdayAbsences)
}

// BackfillYesterdayAbsences backfills every class for the previous local day.
// The job ticks hourly but only acts during the first hour after midnight in
// the reference zone; every session from yesterday has ended by then.
func (j *AttendanceJobs) BackfillYesterdayAbsences(ctx context.Context) error {
	now := time.Now().In(j.loc)
	if now.Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting absence backfill sweep")

	classes, err := j.classRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list classes: %w", err)
	}

	yesterday := now.AddDate(0, 0, -1)
	totalInserted := 0

	for _, c := range classes {
		res, err := j.attendanceSvc.BackfillAbsences(ctx, c.ID, yesterday, now)
		if err != nil {
			if errors.Is(err, attendance.ErrNoSessionToday) {
				continue
			}
			slog.Error("Cron: Backfill failed for class",
				"class_id", c.ID,
				"date", yesterday.Format("2006-01-02"),
				"error", err)
			continue
		}
		totalInserted += res.Inserted
	}

	slog.Info("Cron: Absence backfill sweep completed", "inserted", totalInserted, "classes", len(classes))
	return nil
}
