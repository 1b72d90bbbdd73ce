package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"amora-service/internal/config"
	"amora-service/internal/db"
	"amora-service/internal/handlers"
	"amora-service/internal/middleware"
	"amora-service/internal/notifications"
	"amora-service/internal/observability"
	"amora-service/internal/repositories"
	"amora-service/internal/storage"
	"amora-service/internal/sweeper"
	"amora-service/internal/token"
	"amora-service/internal/ws"
)

const serviceName = "amora-service"

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.SetupTracing(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to set up tracing: %v", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Printf("trace shutdown: %v", err)
			}
		}()
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	notifier := notifications.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer notifier.Close()

	uploads, err := storage.NewS3Storage(storage.Config{
		Endpoint:      cfg.S3Endpoint,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Region:        cfg.S3Region,
		UseSSL:        cfg.S3UseSSL,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("failed to create s3 client: %v", err)
	}

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	locationRepo := repositories.NewLocationRepo(database)
	kycRepo := repositories.NewKycRepo(database)

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	hub := ws.NewHub()
	gateway := ws.NewGateway(hub, messageRepo, tokens, notifier)

	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	geoHandler := handlers.NewGeoHandler(locationRepo)
	kycHandler := handlers.NewKycHandler(kycRepo, userRepo, uploads)
	subscriptionHandler := handlers.NewSubscriptionHandler(userRepo)
	messagesHandler := handlers.NewMessagesHandler(messageRepo, hub)
	notificationHandler := handlers.NewNotificationHandler(userRepo)

	go sweeper.New(messageRepo, cfg.SweepInterval).Run(ctx)

	if !cfg.DebugRoutes {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(tokens)

	api := router.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.PUT("/e2ee/public-key", authMiddleware, authHandler.UploadPublicKey)
	api.GET("/e2ee/public-key/:user_id", authMiddleware, authHandler.GetPublicKey)

	api.PUT("/geo/location", authMiddleware, geoHandler.UpdateLocation)
	api.GET("/geo/nearby", authMiddleware, geoHandler.FindNearby)

	api.POST("/kyc/upload-url", authMiddleware, kycHandler.GetUploadURL)
	api.POST("/kyc/submit", authMiddleware, kycHandler.SubmitKyc)
	api.POST("/admin/kyc/:request_id/review", authMiddleware, kycHandler.ReviewKyc)

	api.POST("/subscription/upgrade", authMiddleware, subscriptionHandler.Upgrade)
	api.POST("/notifications/device-token", authMiddleware, notificationHandler.RegisterDeviceToken)

	api.GET("/conversations/:conversation_id/messages", authMiddleware, messagesHandler.GetConversationMessages)
	api.POST("/messages/:message_id/read", authMiddleware, messagesHandler.MarkAsRead)
	api.PUT("/messages/:message_id/reactions", authMiddleware, messagesHandler.AddReaction)
	api.DELETE("/messages/:message_id", authMiddleware, messagesHandler.DeleteForAll)

	router.GET("/ws", gateway.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
