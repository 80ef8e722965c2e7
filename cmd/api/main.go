package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinic-api/internal/config"
	appointmentHandler "github.com/clinicore/clinic-api/internal/handler/appointment"
	authHandler "github.com/clinicore/clinic-api/internal/handler/auth"
	clinicianHandler "github.com/clinicore/clinic-api/internal/handler/clinician"
	dashboardHandler "github.com/clinicore/clinic-api/internal/handler/dashboard"
	healthHandler "github.com/clinicore/clinic-api/internal/handler/health"
	patientHandler "github.com/clinicore/clinic-api/internal/handler/patient"
	rbacHandler "github.com/clinicore/clinic-api/internal/handler/rbac"
	recordHandler "github.com/clinicore/clinic-api/internal/handler/record"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/repository/postgres"
	"github.com/clinicore/clinic-api/internal/router"
	accountService "github.com/clinicore/clinic-api/internal/service/account"
	appointmentService "github.com/clinicore/clinic-api/internal/service/appointment"
	clinicianService "github.com/clinicore/clinic-api/internal/service/clinician"
	dashboardService "github.com/clinicore/clinic-api/internal/service/dashboard"
	"github.com/clinicore/clinic-api/internal/service/identity"
	patientService "github.com/clinicore/clinic-api/internal/service/patient"
	rbacService "github.com/clinicore/clinic-api/internal/service/rbac"
	recordService "github.com/clinicore/clinic-api/internal/service/record"
	"github.com/clinicore/clinic-api/internal/service/softdelete"
	"github.com/clinicore/clinic-api/pkg/auth"
	"github.com/clinicore/clinic-api/pkg/logger"
	"github.com/clinicore/clinic-api/pkg/messaging"
	redisbroker "github.com/clinicore/clinic-api/pkg/messaging/redis"
	"github.com/clinicore/clinic-api/pkg/metrics"
	"github.com/clinicore/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = logger.NewLogger(&logger.Config{Level: level, Pretty: cfg.Log.Pretty}).Zerolog()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	base := postgres.NewBaseRepository(db)
	accountRepo := postgres.NewAccountRepository(base)
	rbacRepo := postgres.NewRBACRepository(base)
	clinicianRepo := postgres.NewClinicianRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	recordRepo := postgres.NewMedicalRecordRepository(base)

	// Optional message broker; the API runs fine without one.
	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redisbroker.NewBroker(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer broker.Close()
	}

	m := metrics.NewMetrics("clinic")
	tokens := auth.NewJWTService(cfg.JWT.Secret)
	hasher := security.NewBcryptHasher(0)

	// Services
	rbacSvc := rbacService.NewService(rbacRepo)
	if err := rbacSvc.Seed(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed roles and permissions")
	}

	resolver := identity.NewResolver(tokens, accountRepo, rbacRepo, clinicianRepo, patientRepo)
	deleter := softdelete.NewCoordinator(&base, accountRepo, clinicianRepo, patientRepo, appointmentRepo, recordRepo, broker, m)
	accountSvc := accountService.NewService(&base, accountRepo, rbacRepo, clinicianRepo, patientRepo, resolver, hasher, tokens, cfg.JWT.Expiry(), broker)
	clinicianSvc := clinicianService.NewService(&base, accountRepo, rbacRepo, clinicianRepo, appointmentRepo, recordRepo, deleter, hasher)
	patientSvc := patientService.NewService(&base, accountRepo, rbacRepo, patientRepo, appointmentRepo, recordRepo, deleter, hasher)
	appointmentSvc := appointmentService.NewService(appointmentRepo, clinicianRepo, patientRepo, deleter)
	recordSvc := recordService.NewService(recordRepo, clinicianRepo, patientRepo, deleter)
	dashboardSvc := dashboardService.NewService(clinicianRepo, patientRepo, appointmentRepo, recordRepo)

	authMW := middleware.NewAuthMiddleware(resolver, m)

	r := router.NewRouter(cfg, authMW, m, router.Handlers{
		Auth:        authHandler.NewHandler(accountSvc),
		Clinician:   clinicianHandler.NewHandler(clinicianSvc),
		Patient:     patientHandler.NewHandler(patientSvc),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Record:      recordHandler.NewHandler(recordSvc),
		Dashboard:   dashboardHandler.NewHandler(dashboardSvc),
		RBAC:        rbacHandler.NewHandler(rbacSvc),
		Health:      healthHandler.NewHandler(db),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
