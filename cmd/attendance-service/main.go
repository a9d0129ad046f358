package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/events"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/handler"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/repository"
	"github.com/wardtrack/wardtrack-backend/internal/attendance/service"
	"github.com/wardtrack/wardtrack-backend/internal/device"
	"github.com/wardtrack/wardtrack-backend/pkg/config"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
	"github.com/wardtrack/wardtrack-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("attendance-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("attendance-service", cfg.Server.Environment)
	log.Info().Msg("starting Attendance Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewAttendanceEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	punchRepo := repository.NewPunchRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	// Initialize service
	attendanceService := service.NewAttendanceService(
		employeeRepo, scheduleRepo, punchRepo, publisher, &cfg.Attendance, log)

	// Initialize handlers
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, log)
	scheduleHandler := handler.NewScheduleHandler(scheduleRepo, publisher, log)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo, publisher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the device poller. The service sits behind the poller's store
	// interface so polled punches go through the same ingestion path as
	// HTTP submissions.
	terminal := device.NewZKTerminal(&cfg.Device, log)
	poller, err := device.NewPoller(terminal, attendanceService, &cfg.Device, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create device poller")
	}
	go poller.Run(ctx, cfg.Device.PollInterval)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "attendance-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1/attendance", func(r chi.Router) {
		r.Get("/report", attendanceHandler.Report)
		r.Get("/summary", attendanceHandler.Summary)
		r.Post("/punches", attendanceHandler.Ingest)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", scheduleHandler.List)
			r.Post("/", scheduleHandler.Create)
			r.Get("/{id}", scheduleHandler.Get)
			r.Put("/{id}", scheduleHandler.Update)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employeeHandler.List)
			r.Post("/", employeeHandler.Create)
			r.Get("/{id}", employeeHandler.Get)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the poller
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
