package attendance

import "errors"

// Attendance domain errors
var (
	ErrNotEnrolled            = errors.New("student is not enrolled in this class")
	ErrNoSessionToday         = errors.New("class has no session scheduled on this day")
	ErrAlreadyMarked          = errors.New("attendance already marked for this session")
	ErrFaceVerificationFailed = errors.New("face verification failed")
	ErrFaceServiceUnavailable = errors.New("face verification service unavailable")
	ErrSessionNotEnded        = errors.New("session has not ended yet")
	ErrInsufficientData       = errors.New("not enough location samples for outlier analysis")
	ErrRecordNotFound         = errors.New("attendance record not found")
)
