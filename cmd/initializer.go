package main

import (
	"database/sql"
	"log"

	"imobilBack/internal/config"
	"imobilBack/internal/handlers"
	"imobilBack/internal/repositories"
	"imobilBack/internal/services"
	"imobilBack/utils"
)

type application struct {
	errorLog   *log.Logger
	infoLog    *log.Logger
	signingKey string

	userRepo *repositories.UserRepository
	tokens   *utils.Manager

	userHandler      *handlers.UserHandler
	listingHandler   *handlers.ListingHandler
	imageHandler     *handlers.ImageHandler
	referenceHandler *handlers.ReferenceHandler
	messageHandler   *handlers.MessageHandler
	requestHandler   *handlers.RequestHandler
}

func initializeApp(db *sql.DB, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	userRepo := &repositories.UserRepository{DB: db}
	listingRepo := &repositories.ListingRepository{DB: db}
	imageRepo := &repositories.ImageRepository{DB: db}
	referenceRepo := &repositories.ReferenceRepository{DB: db}
	messageRepo := &repositories.MessageRepository{DB: db}
	requestRepo := &repositories.RequestRepository{DB: db}

	store := &utils.S3Storage{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Folder:    cfg.Storage.Folder,
	}
	mailer := &utils.Mailer{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}
	tokens, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	userService := &services.UserService{
		UserRepo:      userRepo,
		ReferenceRepo: referenceRepo,
		Tokens:        tokens,
		Mail:          mailer,
		ResetURL:      cfg.Mail.ResetURL,
	}
	listingService := &services.ListingService{
		ListingRepo:   listingRepo,
		ImageRepo:     imageRepo,
		ReferenceRepo: referenceRepo,
		UserRepo:      userRepo,
		Store:         store,
	}
	imageService := &services.ImageService{
		ImageRepo:   imageRepo,
		ListingRepo: listingRepo,
		Store:       store,
	}
	referenceService := &services.ReferenceService{ReferenceRepo: referenceRepo}
	messageService := &services.MessageService{
		MessageRepo: messageRepo,
		Mail:        mailer,
		NotifyAddr:  cfg.Mail.NotifyAddr,
	}
	requestService := &services.RequestService{
		RequestRepo:   requestRepo,
		ReferenceRepo: referenceRepo,
		Mail:          mailer,
		NotifyAddr:    cfg.Mail.NotifyAddr,
	}

	return &application{
		errorLog:   errorLog,
		infoLog:    infoLog,
		signingKey: cfg.Auth.SigningKey,
		userRepo:   userRepo,
		tokens:     tokens,

		userHandler:      &handlers.UserHandler{Service: userService},
		listingHandler:   &handlers.ListingHandler{Service: listingService},
		imageHandler:     &handlers.ImageHandler{Service: imageService},
		referenceHandler: &handlers.ReferenceHandler{Service: referenceService},
		messageHandler:   &handlers.MessageHandler{Service: messageService},
		requestHandler:   &handlers.RequestHandler{Service: requestService},
	}
}
