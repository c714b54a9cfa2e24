package app

import (
	"log"

	"chatsphere/backend/internal/config"
	"chatsphere/backend/internal/handler"
	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/pkg/storage"
	"chatsphere/backend/internal/repository"
	"chatsphere/backend/internal/service"
)

func Run(cfg *config.Config) {
	db, err := repository.NewDB(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Chat{}, &model.Message{}); err != nil {
		log.Fatal(err)
	}

	rdb, err := storage.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal(err)
	}

	summaryCache := repository.NewSummaryCacheRepository(rdb)

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	userService := service.NewUserService(userRepo)
	chatService := service.NewChatService(chatRepo, userRepo, messageRepo, summaryCache)
	messageService := service.NewMessageService(messageRepo, userRepo, chatRepo, summaryCache)

	var mediaService *service.MediaService
	if cfg.S3Bucket != "" {
		mediaService, err = service.NewMediaService(cfg)
		if err != nil {
			log.Fatal(err)
		}
	}

	userHandler := handler.NewUserHandler(userService, mediaService)
	chatHandler := handler.NewChatHandler(chatService)
	messageHandler := handler.NewMessageHandler(messageService)

	server := NewServer(userHandler, chatHandler, messageHandler)
	server.Run(cfg.ServerPort)
}
