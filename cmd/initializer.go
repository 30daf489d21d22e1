package main

import (
	"database/sql"
	"log"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"

	"apichat/internal/config"
	"apichat/internal/handlers"
	"apichat/internal/presence"
	"apichat/internal/repositories"
	services "apichat/internal/services"
	"apichat/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	cfg      config.Config
	db       *sql.DB

	userRepo *repositories.UserRepository

	userHandler    *handlers.UserHandler
	chatHandler    *handlers.ChatHandler
	messageHandler *handlers.MessageHandler
	fcmHandler     *handlers.FCMHandler

	messageService *services.MessageService
	chatService    *services.ChatService

	wsManager *WebSocketManager
	presence  *presence.Tracker
}

func initializeApp(db *sql.DB, rdb *redis.Client, fcmClient *messaging.Client, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	userRepo := &repositories.UserRepository{DB: db}
	chatRepo := &repositories.ChatRepository{DB: db}
	messageRepo := &repositories.MessageRepository{DB: db}
	reactionRepo := &repositories.ReactionRepository{DB: db}
	tokenRepo := &repositories.NotifyTokenRepository{DB: db}

	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	images := services.S3ImageStore{}

	userService := &services.UserService{
		UserRepo:     userRepo,
		TokenManager: tokenManager,
		Images:       images,
		AccessTTL:    time.Duration(cfg.Auth.AccessTTLMin) * time.Minute,
		RefreshTTL:   time.Duration(cfg.Auth.RefreshTTLHours) * time.Hour,
	}
	chatService := &services.ChatService{
		ChatRepo: chatRepo,
		UserRepo: userRepo,
	}
	messageService := &services.MessageService{
		MessageRepo: messageRepo,
		ChatRepo:    chatRepo,
		Reactions:   reactionRepo,
		Images:      images,
	}

	presenceTracker := presence.NewTracker(rdb)
	wsManager := NewWebSocketManager(presenceTracker)
	fcmHandler := handlers.NewFCMHandler(fcmClient, tokenRepo)

	userHandler := &handlers.UserHandler{UserService: userService, PageSize: cfg.Pagination.Users}
	chatHandler := &handlers.ChatHandler{ChatService: chatService, PageSize: cfg.Pagination.Chats}
	messageHandler := &handlers.MessageHandler{
		MessageService: messageService,
		ChatService:    chatService,
		Notifier:       fcmHandler,
		Live:           wsManager,
		PageSize:       cfg.Pagination.Messages,
	}

	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		cfg:            cfg,
		db:             db,
		userRepo:       userRepo,
		userHandler:    userHandler,
		chatHandler:    chatHandler,
		messageHandler: messageHandler,
		fcmHandler:     fcmHandler,
		messageService: messageService,
		chatService:    chatService,
		wsManager:      wsManager,
		presence:       presenceTracker,
	}
}
