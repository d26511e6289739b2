package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campus-events/backend/config"
	"github.com/campus-events/backend/internal/auth"
	"github.com/campus-events/backend/internal/calendar"
	"github.com/campus-events/backend/internal/mailer"
	"github.com/campus-events/backend/internal/middleware"
	"github.com/campus-events/backend/internal/profile"
	"github.com/campus-events/backend/internal/requests"
	"github.com/campus-events/backend/internal/session"
	"github.com/campus-events/backend/internal/users"
	"github.com/campus-events/backend/pkg/database"
	"github.com/campus-events/backend/pkg/queue"
	"github.com/campus-events/backend/pkg/redis"
	"github.com/campus-events/backend/pkg/response"
	"github.com/campus-events/backend/pkg/storage"
	"github.com/campus-events/backend/pkg/utils"
)

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func main() {
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	s3, err := storage.NewS3(ctx, storage.S3Config{
		Region:            cfg.AWS.Region,
		AccessKeyID:       cfg.AWS.AccessKeyID,
		SecretAccessKey:   cfg.AWS.SecretAccessKey,
		AttachmentsBucket: cfg.AWS.AttachmentsBucket,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create S3 client", zap.Error(err))
	}
	logger.Info("attachment storage ready", zap.String("bucket", s3.Bucket()))

	sessions := session.NewStore(rdb.Client,
		cfg.Session.CookieName,
		time.Duration(cfg.Session.TTLHours)*time.Hour,
		cfg.Session.CookieSecure)
	jobs := queue.NewQueue(rdb.Client, logger)

	authRepo := auth.NewRepository(pool)
	usersRepo := users.NewRepository(pool)
	requestsRepo := requests.NewRepository(pool)
	calendarRepo := calendar.NewRepository(pool)
	emailRepo := mailer.NewRepository(pool)

	sender := mailer.NewSender(mailer.Config{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPass,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	}, logger)

	authHandler := auth.NewHandler(authRepo, sessions, logger)
	usersHandler := users.NewHandler(usersRepo, logger)
	profileHandler := profile.NewHandler(authRepo, logger)
	requestsHandler := requests.NewHandler(requestsRepo, s3, jobs, logger)
	calendarHandler := calendar.NewHandler(calendarRepo, logger)
	mailerHandler := mailer.NewHandler(sender, emailRepo, logger)

	seedAdmin(ctx, cfg, authRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Session(sessions, logger))
	router.Use(middleware.PrefixGuard())

	router.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"message": "pong"})
	})

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authHandler.Me)
		authGroup.POST("/change_password", middleware.RequireAuth(), authHandler.ChangePassword)
		authGroup.POST("/register_event", middleware.RequireAuth(), authHandler.RegisterEvent)
		authGroup.POST("/create_publisher", middleware.RequireAuth(), middleware.RequireRole("admin"), authHandler.CreatePublisher)
		authGroup.PUT("/update_user/:username", middleware.RequireAuth(), middleware.RequireRole("admin"), authHandler.UpdateUserByName)
		authGroup.DELETE("/delete_user/:username", middleware.RequireAuth(), middleware.RequireRole("admin"), authHandler.DeleteUserByName)
	}

	adminGroup := router.Group("/admin/users", middleware.RequireAuth(), middleware.RequireRole("admin"))
	{
		adminGroup.GET("", usersHandler.List)
		adminGroup.POST("", usersHandler.Create)
		adminGroup.PUT("/:id", usersHandler.Update)
		adminGroup.DELETE("/:id", usersHandler.Delete)
	}

	reqGroup := router.Group("/req")
	{
		reqGroup.POST("/pubreq", requestsHandler.Submit)
		reqGroup.GET("/pubreqfetch", middleware.RequireAuth(), middleware.RequireRole("staff", "admin"), requestsHandler.Fetch)
		reqGroup.GET("/attachments/:id", requestsHandler.Attachment)
		reqGroup.POST("/pubreqchangestatus", middleware.RequireAuth(), middleware.RequireRole("staff", "admin"), requestsHandler.ChangeStatus)
		reqGroup.POST("/pubrequpdate", middleware.RequireAuth(), middleware.RequireRole("staff", "admin"), requestsHandler.Update)
		reqGroup.POST("/pubreqdelete", middleware.RequireAuth(), middleware.RequireRole("staff", "admin"), requestsHandler.Delete)
		reqGroup.POST("/eventcreate", middleware.RequireAuth(), middleware.RequireRole("staff", "admin"), requestsHandler.CreateEvent)
		reqGroup.POST("/eventdelete", middleware.RequireAuth(), middleware.RequireRole("staff", "admin"), requestsHandler.DeleteEvent)
		reqGroup.GET("/eventfetch", calendarHandler.Range)
		reqGroup.GET("/calendar", calendarHandler.Range)
	}

	profileGroup := router.Group("/profile", middleware.RequireAuth())
	{
		profileGroup.GET("", profileHandler.Get)
		profileGroup.POST("", profileHandler.Update)
	}

	emailGroup := router.Group("/email")
	{
		emailGroup.POST("/send", middleware.RequireAuth(), mailerHandler.Send)
		emailGroup.POST("/test-send", middleware.RequireAuth(), middleware.RequireRole("admin"), mailerHandler.TestSend)
		emailGroup.GET("/log/:request_id", middleware.RequireAuth(), middleware.RequireRole("staff", "admin"), mailerHandler.History)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func seedAdmin(ctx context.Context, cfg *config.Config, repo *auth.Repository, logger *zap.Logger) {
	hash, err := utils.HashPassword(cfg.Admin.Password)
	if err != nil {
		logger.Error("hash admin password", zap.Error(err))
		return
	}
	if err := repo.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, hash); err != nil {
		logger.Error("seed admin account", zap.Error(err))
		return
	}
	logger.Info("admin account ensured", zap.String("username", cfg.Admin.Username))
}
