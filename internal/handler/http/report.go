package http

import (
	"net/http"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/domain/report"
	"github.com/classtrack/classtrack-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	GetStudentClassReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.Service
}

func NewReportHandler(reportService report.Service) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetStudentClassReport implements ReportHandler.
func (h *reportHandlerImpl) GetStudentClassReport(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")
	classID := chi.URLParam(r, "classID")

	result, err := h.reportService.BuildReport(r.Context(), studentID, classID, time.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
