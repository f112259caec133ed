package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CheckIns counts accepted check-ins by resulting status.
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_checkins_total",
		Help: "Accepted attendance check-ins by status.",
	}, []string{"status"})

	// CheckInRejections counts check-ins rejected before a record was written.
	CheckInRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_checkin_rejections_total",
		Help: "Rejected attendance check-ins by reason.",
	}, []string{"reason"})

	// BackfilledAbsences counts absence records inserted by backfill runs.
	BackfilledAbsences = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_backfilled_absences_total",
		Help: "Absence records inserted by backfill runs.",
	})

	// OutlierPasses counts location outlier analysis runs.
	OutlierPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_outlier_passes_total",
		Help: "Location outlier analysis runs.",
	})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
