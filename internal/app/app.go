package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/mtwilk/smart-study-buddy/internal/config"
	"github.com/mtwilk/smart-study-buddy/internal/delivery/httpd"
	"github.com/mtwilk/smart-study-buddy/internal/repository"
	"github.com/mtwilk/smart-study-buddy/internal/service"
	"github.com/mtwilk/smart-study-buddy/internal/service/integration"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	server  *http.Server
	logger  zerolog.Logger
	config  *config.Config
	db      *sql.DB
	mongoDB *mongo.Database
	agent   *service.Agent
	broker  integration.RabbitMQClient
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB, mongoDB *mongo.Database) (*App, error) {
	var calendarClient integration.CalendarClient
	if cfg.Calendar.Enabled {
		calendarClient = integration.NewCalendarClient(cfg.Calendar, log)
	} else {
		log.Warn().Msg("Calendar integration disabled, pull and mirror are unavailable")
	}

	var emailClient integration.EmailClient
	if cfg.SMTP.Sender != "" {
		emailClient = integration.NewEmailClient(cfg.SMTP, cfg.Planner.FrontendURL, log)
	} else {
		log.Warn().Msg("SMTP sender not configured, notifications disabled")
	}

	// The broker is optional infrastructure: a broken RabbitMQ must not keep
	// the service from starting.
	var broker integration.RabbitMQClient
	rabbit, err := integration.NewRabbitMQClient(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to RabbitMQ, continuing without event publishing")
	} else {
		broker = rabbit
	}

	eventRepo := repository.NewEventRepository(mongoDB, log)
	assignmentRepo := repository.NewAssignmentRepository(db, log)
	sessionRepo := repository.NewSessionRepository(db, log)
	profileRepo := repository.NewProfileRepository(db, log)

	ingestService := service.NewIngestService(eventRepo, calendarClient, log)
	notifierService := service.NewNotifierService(assignmentRepo, profileRepo, emailClient, log)
	reminderService := service.NewReminderService(eventRepo, log)
	syncService := service.NewSyncService(
		eventRepo,
		assignmentRepo,
		profileRepo,
		notifierService,
		reminderService,
		broker,
		cfg.Agent.ReminderDaysAhead,
		log,
	)
	plannerService := service.NewPlannerService(
		assignmentRepo,
		sessionRepo,
		profileRepo,
		calendarClient,
		cfg.Planner,
		log,
	)

	agent := service.NewAgent(ingestService, syncService, notifierService, cfg.Agent, log)

	handler := httpd.NewHandler(
		ingestService,
		syncService,
		plannerService,
		reminderService,
		agent,
		emailClient,
		cfg.Agent.ReminderDaysAhead,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:  server,
		logger:  log,
		config:  cfg,
		db:      db,
		mongoDB: mongoDB,
		agent:   agent,
		broker:  broker,
	}, nil
}

func (a *App) Run() error {
	if a.config.Agent.Enabled {
		if err := a.agent.Start(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to start agent")
			return err
		}
	}

	a.logger.Info().Msgf("Starting study buddy service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down study buddy service...")

	a.agent.Stop()

	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.mongoDB != nil {
		if err := a.mongoDB.Client().Disconnect(ctx); err != nil {
			a.logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Study buddy service stopped")
	return nil
}
