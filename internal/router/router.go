package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/corvid-labs/rookery/backend/internal/cache"
	"github.com/corvid-labs/rookery/backend/internal/handlers"
	"github.com/corvid-labs/rookery/backend/internal/id"
	"github.com/corvid-labs/rookery/backend/internal/middleware"
	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/notes"
	"github.com/corvid-labs/rookery/backend/internal/notifications"
	"github.com/corvid-labs/rookery/backend/internal/repositories"
	"github.com/corvid-labs/rookery/backend/internal/timeline"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo, logger *slog.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogStatus: true,
		LogMethod: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))
}

// SetupRoutes configures all application routes and injects dependencies.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, timelineCache cache.TimelineCache, ids *id.Generator, logger *slog.Logger) error {
	err := pgdb.AutoMigrate(
		&models.Account{},
		&models.FollowEdge{},
		&models.FollowRequest{},
		&models.List{},
		&models.ListMember{},
		&models.Reaction{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}

	noteRepo := repositories.NewMongoNoteRepository(mgClient.Database("rookery"))
	accountRepo := repositories.NewPostgresAccountRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	requestRepo := repositories.NewPostgresFollowRequestRepository(pgdb)
	listRepo := repositories.NewPostgresListRepository(pgdb)
	reactionRepo := repositories.NewPostgresReactionRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	noteService := notes.NewService(noteRepo, followRepo, listRepo, reactionRepo, notificationRepo, timelineCache, ids, logger)
	assembler := timeline.NewAssembler(noteRepo, followRepo, listRepo, timelineCache, logger)
	reader := notifications.NewReader(notificationRepo)

	e.GET("/health", handlers.HealthCheck)

	timelineHandler := handlers.NewTimelineHandler(assembler)
	timelineHandler.RegisterPublicRoutes(e)

	api := e.Group("/api/v1")
	api.Use(middleware.Identity())

	timelineHandler.RegisterTimelineRoutes(api)

	noteHandler := handlers.NewNoteHandler(noteService, reactionRepo)
	noteHandler.RegisterNoteRoutes(api)

	accountHandler := handlers.NewAccountHandler(accountRepo, followRepo)
	accountHandler.RegisterAccountRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, accountRepo, requestRepo, notificationRepo, timelineCache, ids, logger)
	followHandler.RegisterFollowRoutes(api)

	listHandler := handlers.NewListHandler(listRepo, timelineCache, ids, logger)
	listHandler.RegisterListRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(reader)
	notificationHandler.RegisterNotificationRoutes(api)

	logger.Info("routes configured")
	return nil
}
