package http

import (
	"log/slog"
	"os"

	"github.com/classtrack/classtrack-backend-go/internal/config"
	"github.com/classtrack/classtrack-backend-go/internal/handler/http/middleware"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/jwt"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/metrics"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	limiter ratelimit.Limiter,
	attendanceHandler AttendanceHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "classtrack"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.With(ratelimit.Middleware(limiter)).Post("/", attendanceHandler.Mark)
			})

			r.Route("/classes/{classID}/attendance", func(r chi.Router) {
				r.Get("/", attendanceHandler.GetClassHistory)
				r.Get("/{date}", attendanceHandler.GetClassDate)
				r.Post("/{date}/outliers", attendanceHandler.DetectOutliers)
				r.Post("/{date}/backfill", attendanceHandler.Backfill)
			})

			r.Get("/students/{studentID}/attendance", attendanceHandler.GetStudentHistory)
			r.Get("/students/{studentID}/classes/{classID}/report", reportHandler.GetStudentClassReport)
		})
	})
	return r
}
