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
	"github.com/wardtrack/wardtrack-backend/internal/staffops/events"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/handler"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/repository"
	"github.com/wardtrack/wardtrack-backend/internal/staffops/service"
	"github.com/wardtrack/wardtrack-backend/pkg/config"
	"github.com/wardtrack/wardtrack-backend/pkg/database"
	"github.com/wardtrack/wardtrack-backend/pkg/httputil"
	"github.com/wardtrack/wardtrack-backend/pkg/logger"
	"github.com/wardtrack/wardtrack-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("staffops-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("staffops-service", cfg.Server.Environment)
	log.Info().Msg("starting StaffOps Service")

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
	publisher, err := events.NewStaffOpsEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	certRepo := repository.NewCertificationRepository(db)
	seminarRepo := repository.NewSeminarRepository(db)
	shiftRepo := repository.NewShiftRequestRepository(db)

	// Initialize service
	staffOpsService := service.NewStaffOpsService(certRepo, seminarRepo, shiftRepo, publisher, log)

	// Initialize handlers
	certHandler := handler.NewCertificationHandler(staffOpsService, log)
	seminarHandler := handler.NewSeminarHandler(staffOpsService, log)
	shiftHandler := handler.NewShiftHandler(staffOpsService, log)

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
			"service":  "staffops-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1/staffops", func(r chi.Router) {
		r.Route("/certifications", func(r chi.Router) {
			r.Post("/", certHandler.Create)
			r.Get("/expiring", certHandler.ListExpiring)
			r.Get("/{id}", certHandler.Get)
			r.Delete("/{id}", certHandler.Delete)
		})
		r.Get("/employees/{employeeId}/certifications", certHandler.ListByEmployee)

		r.Route("/seminars", func(r chi.Router) {
			r.Get("/", seminarHandler.List)
			r.Post("/", seminarHandler.Create)
			r.Get("/{id}", seminarHandler.Get)
			r.Post("/{id}/registrations", seminarHandler.Register)
			r.Get("/{id}/registrations", seminarHandler.ListRegistrations)
		})

		r.Route("/shift-requests", func(r chi.Router) {
			r.Get("/", shiftHandler.List)
			r.Post("/", shiftHandler.Create)
			r.Get("/{id}", shiftHandler.Get)
			r.Post("/{id}/decision", shiftHandler.Decide)
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

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
