package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"tuition-service/internal/config"
	"tuition-service/internal/db"
	"tuition-service/internal/handlers"
	"tuition-service/internal/messaging"
	"tuition-service/internal/middleware"
	"tuition-service/internal/observability"
	"tuition-service/internal/rabbitmq"
	"tuition-service/internal/repositories"
	"tuition-service/internal/telemetry"
)

const serviceName = "tuition-messaging"

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	emitter := telemetry.NewEmitter(publisher, cfg.AuditRoutingKey, serviceName, cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	studentRepo := repositories.NewStudentRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	service := messaging.NewService(conversationRepo, messageRepo, userRepo, studentRepo, emitter)

	messagingHandler := handlers.NewMessagingHandler(service, emitter)
	studentHandler := handlers.NewStudentHandler(studentRepo)
	userHandler := handlers.NewUserHandler(userRepo, emitter)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

	router.GET("/conversations", authMiddleware, messagingHandler.ListConversations)
	router.POST("/conversations", authMiddleware, messagingHandler.StartConversation)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, messagingHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, messagingHandler.PostMessage)
	router.POST("/conversations/:conversation_id/read", authMiddleware, messagingHandler.MarkRead)

	tutorOnly := middleware.RequireRole("tutor")
	router.POST("/notifications/progress-update", authMiddleware, tutorOnly, messagingHandler.SendProgressUpdate)
	router.POST("/notifications/lesson-reminder", authMiddleware, tutorOnly, messagingHandler.SendLessonReminder)

	parentOnly := middleware.RequireRole("parent")
	router.POST("/students", authMiddleware, parentOnly, studentHandler.CreateStudent)
	router.GET("/students", authMiddleware, parentOnly, studentHandler.ListStudents)
	router.GET("/students/:student_id", authMiddleware, parentOnly, studentHandler.GetStudent)
	router.PUT("/students/:student_id", authMiddleware, parentOnly, studentHandler.UpdateStudent)
	router.DELETE("/students/:student_id", authMiddleware, parentOnly, studentHandler.DeleteStudent)

	router.GET("/users/me", authMiddleware, userHandler.GetMe)
	router.PATCH("/users/me", authMiddleware, userHandler.UpdateMe)
	router.POST("/users/:user_id/deactivate", authMiddleware, middleware.RequireRole("admin"), userHandler.Deactivate)

	handlers.RegisterDebugRoutes(router, emitter, cfg.Debug)

	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
