package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classtrack/classtrack-backend-go/internal/config"
	appHTTP "github.com/classtrack/classtrack-backend-go/internal/handler/http"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/cron"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/database"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/faceclient"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/jwt"
	"github.com/classtrack/classtrack-backend-go/internal/pkg/ratelimit"
	"github.com/classtrack/classtrack-backend-go/internal/repository/postgresql"
	attendanceService "github.com/classtrack/classtrack-backend-go/internal/service/attendance"
	reportService "github.com/classtrack/classtrack-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	loc := cfg.Location()

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	classRepo := postgresql.NewClassRepository(db)
	studentRepo := postgresql.NewStudentRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	faceClient := faceclient.New(cfg.Face.ServiceURL, cfg.Face.Skip)

	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		redisLimiter := ratelimit.NewRedisLimiter(cfg.Redis.Addr, cfg.Attendance.RateLimitPerMinute)
		if !redisLimiter.Healthy(context.Background()) {
			log.Println("warning: redis not reachable, using in-memory rate limiter")
			limiter = ratelimit.NewSimpleTokenBucket(cfg.Attendance.RateLimitPerMinute, cfg.Attendance.RateLimitPerMinute)
		} else {
			limiter = redisLimiter
		}
	} else {
		limiter = ratelimit.NewSimpleTokenBucket(cfg.Attendance.RateLimitPerMinute, cfg.Attendance.RateLimitPerMinute)
	}

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, classRepo, studentRepo, faceClient, loc)
	reportSvc := reportService.NewReportService(attendanceRepo, classRepo, studentRepo, loc)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, loc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(cfg, JWTService, limiter, attendanceHandler, reportHandler)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(classRepo, attendanceSvc, loc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running at http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
}
