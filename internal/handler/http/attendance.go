package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/attendance"
	"github.com/classtrack/classtrack-backend-go/internal/handler/http/response"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Mark(w http.ResponseWriter, r *http.Request)
	GetClassDate(w http.ResponseWriter, r *http.Request)
	GetClassHistory(w http.ResponseWriter, r *http.Request)
	GetStudentHistory(w http.ResponseWriter, r *http.Request)
	DetectOutliers(w http.ResponseWriter, r *http.Request)
	Backfill(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	loc               *time.Location
}

func NewAttendanceHandler(attendanceService attendance.Service, loc *time.Location) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		loc:               loc,
	}
}

// Mark implements AttendanceHandler.
func (h *attendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode check-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// The event time is captured once and flows through the whole pipeline.
	now := time.Now()

	result, err := h.attendanceService.MarkAttendance(r.Context(), &req, now)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance marked", result)
}

// GetClassDate implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetClassDate(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	date, ok := h.parseDate(w, chi.URLParam(r, "date"))
	if !ok {
		return
	}

	result, err := h.attendanceService.GetClassAttendanceForDate(r.Context(), classID, date, time.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetClassHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetClassHistory(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")

	result, err := h.attendanceService.GetClassAttendance(r.Context(), classID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetStudentHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStudentHistory(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	result, err := h.attendanceService.GetStudentAttendance(r.Context(), studentID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DetectOutliers implements AttendanceHandler.
func (h *attendanceHandlerImpl) DetectOutliers(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	date, ok := h.parseDate(w, chi.URLParam(r, "date"))
	if !ok {
		return
	}

	result, err := h.attendanceService.DetectLocationOutliers(r.Context(), classID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Location outlier analysis completed", result)
}

// Backfill implements AttendanceHandler.
func (h *attendanceHandlerImpl) Backfill(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classID")
	date, ok := h.parseDate(w, chi.URLParam(r, "date"))
	if !ok {
		return
	}

	result, err := h.attendanceService.BackfillAbsences(r.Context(), classID, date, time.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absences backfilled", result)
}

// parseDate parses a "YYYY-MM-DD" path segment into a day in the reference
// zone. Writes the error response itself when parsing fails.
func (h *attendanceHandlerImpl) parseDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	parsed, ok := validator.IsValidDate(raw)
	if !ok {
		response.BadRequest(w, "Invalid date, expected YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, h.loc), true
}
