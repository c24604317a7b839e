package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anjerodev/dotenv/internal/config"
	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/infrastructure/cache"
	"github.com/anjerodev/dotenv/internal/infrastructure/database"
	"github.com/anjerodev/dotenv/internal/infrastructure/database/repositories"
	"github.com/anjerodev/dotenv/internal/infrastructure/storage"
	"github.com/anjerodev/dotenv/internal/interfaces/handlers"
	"github.com/anjerodev/dotenv/pkg/logger"
)

func Run(cfg config.Config) error {
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	avatarStore, err := storage.NewMinioStorage(cfg.Storage)
	if err != nil {
		return err
	}

	userRepo := repositories.NewUserRepository(db.Pool())
	sessionRepo := repositories.NewSessionRepository(db.Pool())
	logRepo := repositories.NewLogRepository(db.Pool())
	projectRepo := repositories.NewProjectRepository(db.Pool())
	docRepo := repositories.NewDocumentRepository(db.SQLX())
	historyRepo := repositories.NewHistoryRepository(db.Pool(), cfg.Database.ContentKey)
	memberRepo := repositories.NewMemberRepository(db.Pool())
	profileRepo := repositories.NewProfileRepository(db.SQLX())

	cacheSvc := services.NewRedisCacheService(redisClient, cfg.Auth.CacheDuration)
	authSvc := services.NewAuthService(userRepo, sessionRepo, profileRepo, logRepo,
		redisClient, cfg.Auth.SessionDuration, cfg.Auth.CodeDuration)
	projectSvc := services.NewProjectService(projectRepo, docRepo, memberRepo, profileRepo, cacheSvc, avatarStore)
	docSvc := services.NewDocumentService(docRepo, historyRepo, projectRepo, memberRepo, profileRepo, cacheSvc, avatarStore)
	memberSvc := services.NewMemberService(memberRepo, profileRepo, cacheSvc, avatarStore)
	profileSvc := services.NewProfileService(profileRepo, avatarStore)

	authHandler := handlers.NewAuthHandler(authSvc, cfg.Auth.CookieName, cfg.Server.AppURL, cfg.Auth.SessionDuration)
	projectHandler := handlers.NewProjectHandler(projectSvc)
	docHandler := handlers.NewDocumentHandler(docSvc)
	memberHandler := handlers.NewMemberHandler(memberSvc)
	profileHandler := handlers.NewProfileHandler(profileSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.HeadToGetMiddleware())
	r.Use(handlers.CORSMiddleware(cfg.Server.AppURL))

	api := r.Group("/api")
	api.Use(handlers.RefererMiddleware(cfg.Server.AppURL))
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/callback", authHandler.Callback)
		api.DELETE("/auth/logout", authHandler.Logout)

		api.GET("/cron", handlers.CronMiddleware(cfg.Auth.CronSecret), authHandler.Cron)

		private := api.Group("")
		private.Use(handlers.SessionMiddleware(authSvc, cfg.Auth.CookieName))
		{
			private.GET("/projects", projectHandler.List)
			private.HEAD("/projects", projectHandler.List)
			private.GET("/projects/count", projectHandler.Count)
			private.POST("/projects", projectHandler.Create)
			private.GET("/projects/:id", projectHandler.Get)
			private.PATCH("/projects/:id", projectHandler.Update)
			private.DELETE("/projects/:id", projectHandler.Delete)

			private.GET("/projects/:id/documents", docHandler.ListByProject)
			private.GET("/projects/:id/documents/count", docHandler.Count)
			private.POST("/projects/:id/documents", docHandler.Create)
			private.GET("/projects/:id/documents/:docId", docHandler.Get)
			private.PATCH("/projects/:id/documents/:docId", docHandler.Update)
			private.GET("/documents/:id", docHandler.Get)

			private.POST("/members", memberHandler.Search)
			private.PATCH("/members", memberHandler.Reconcile)

			private.GET("/profile", profileHandler.Get)
			private.PATCH("/profile", profileHandler.Update)
			private.POST("/profile/avatar", profileHandler.UploadAvatar)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
