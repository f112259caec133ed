package response

import (
	"errors"
	"net/http"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/classtrack/classtrack-backend-go/internal/domain/class"
	"github.com/classtrack/classtrack-backend-go/internal/domain/student"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Lookup errors
	case errors.Is(err, class.ErrClassNotFound):
		NotFound(w, "Class not found")
	case errors.Is(err, student.ErrStudentNotFound):
		NotFound(w, "Student not found")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Check-in pipeline errors
	case errors.Is(err, attendance.ErrNotEnrolled):
		BadRequest(w, "Student is not enrolled in this class", nil)
	case errors.Is(err, attendance.ErrNoSessionToday):
		BadRequest(w, "Class has no session scheduled on this day", nil)
	case errors.Is(err, attendance.ErrAlreadyMarked):
		Conflict(w, "Attendance already marked for this session")
	case errors.Is(err, attendance.ErrFaceVerificationFailed):
		BadRequest(w, "Face verification failed", nil)
	case errors.Is(err, attendance.ErrFaceServiceUnavailable):
		BadGateway(w, "Face verification service unavailable")

	// Analysis and backfill errors
	case errors.Is(err, attendance.ErrInsufficientData):
		BadRequest(w, "Not enough location samples for outlier analysis", nil)
	case errors.Is(err, attendance.ErrSessionNotEnded):
		BadRequest(w, "Session has not ended yet", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
