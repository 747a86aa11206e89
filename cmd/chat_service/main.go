package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"chat_backend_service/internal/chat/api/handlers"
	"chat_backend_service/internal/chat/api/router"
	"chat_backend_service/internal/chat/app"
	"chat_backend_service/internal/chat/repository"
	"chat_backend_service/pkg/config"
	"chat_backend_service/pkg/database"
	"chat_backend_service/pkg/logger"
	"chat_backend_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	if cfg.JWT.AccessSecret != "" {
		token.AccessSecret = []byte(cfg.JWT.AccessSecret)
	}
	if cfg.JWT.RefreshSecret != "" {
		token.RefreshSecret = []byte(cfg.JWT.RefreshSecret)
	}
	if cfg.JWT.AccessTTL > 0 {
		token.AccessExpiration = cfg.JWT.AccessTTL
	}
	if cfg.JWT.RefreshTTL > 0 {
		token.RefreshExpiration = cfg.JWT.RefreshTTL
	}

	ctx := context.Background()
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	masterName, sentinel := config.GetRedisSetting()
	refreshRepo, err := database.NewRedisRepository[string](masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	secretRepo, err := database.NewRedisRepository[app.SecretKeys](masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.AccessKey,
		Password:      cfg.MinIO.SecretKey,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    5,
		RetryInterval: 2,
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	roomRepo := repository.NewMongoChatRepository(mongo.Database)
	msgRepo := repository.NewMongoChatMessageRepository(mongo.Database)
	userRepo := repository.NewMongoUserRepository(mongo.Database)
	notifRepo := repository.NewMongoNotificationRepository(mongo.Database)
	fileRepo := repository.NewFileRepository(minioClient, mongo.Database)

	registry := app.NewSessionRegistry()
	notifier := app.NewNotifier(registry)

	roomUC := app.NewRoomUseCase(roomRepo, msgRepo, fileRepo)
	messageUC := app.NewMessageUseCase(roomUC, msgRepo, fileRepo, notifier)
	conversationUC := app.NewConversationUseCase(roomUC, msgRepo, cfg.PageSearchLimit)
	friendUC := app.NewFriendUseCase(userRepo, notifRepo, notifier)
	memberUC := app.NewMemberUseCase(userRepo, refreshRepo, secretRepo, config.EnvConfig.ChatService)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		&handlers.MemberHandler{MemberUC: memberUC},
		&handlers.RoomHandler{RoomUC: roomUC, ConversationUC: conversationUC},
		&handlers.MessageHandler{MessageUC: messageUC},
		&handlers.FileHandler{FileRepo: fileRepo},
		&handlers.NotificationHandler{FriendUC: friendUC},
		app.NewChatWebsocketHandler(registry, messageUC),
	)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
