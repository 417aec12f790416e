package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/decision-api/config"
	"github.com/clinicore/decision-api/internal/handler"
	aiHandler "github.com/clinicore/decision-api/internal/handler/ai"
	consultationHandler "github.com/clinicore/decision-api/internal/handler/consultation"
	patientHandler "github.com/clinicore/decision-api/internal/handler/patient"
	"github.com/clinicore/decision-api/internal/middleware"
	"github.com/clinicore/decision-api/internal/repository/postgres"
	"github.com/clinicore/decision-api/internal/router"
	amrService "github.com/clinicore/decision-api/internal/service/amr"
	assistantService "github.com/clinicore/decision-api/internal/service/assistant"
	consultationService "github.com/clinicore/decision-api/internal/service/consultation"
	diagnosisService "github.com/clinicore/decision-api/internal/service/diagnosis"
	imagingService "github.com/clinicore/decision-api/internal/service/imaging"
	"github.com/clinicore/decision-api/internal/service/notification"
	patientService "github.com/clinicore/decision-api/internal/service/patient"
	"github.com/clinicore/decision-api/pkg/logger"
	"github.com/clinicore/decision-api/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	imageRepo := postgres.NewImageRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	notifier := notification.NewService(cfg.SMTP)
	diagnosisSvc := diagnosisService.NewService(consultationRepo)
	amrSvc := amrService.NewService(consultationRepo, notifier, log)
	assistantSvc := assistantService.NewService(chatRepo)
	imagingSvc := imagingService.NewService(imageRepo)
	patientSvc := patientService.NewService(patientRepo)
	consultationSvc := consultationService.NewService(consultationRepo)

	m := metrics.New("decision_api", prometheus.DefaultRegisterer)

	// Handlers
	h := handler.NewHandler(db)
	aiH := aiHandler.NewHandler(diagnosisSvc, amrSvc, assistantSvc, imagingSvc, outboxRepo, m)
	patientH := patientHandler.NewHandler(patientSvc)
	consultH := consultationHandler.NewHandler(consultationSvc)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT)

	routerCfg := router.DefaultConfig()
	routerCfg.RateLimit = cfg.RouterConfig()
	routerCfg.CORS = cfg.CORSMiddlewareConfig()
	if cfg.Server.RequestTimeout > 0 {
		routerCfg.Timeout = cfg.Server.RequestTimeout
	}

	r := router.NewRouter(authMiddleware, aiH, patientH, consultH, h, m, routerCfg)
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited")
}
