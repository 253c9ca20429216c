package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"bookshelf/internal/adapter/api"
	"bookshelf/internal/adapter/api/handler"
	apimiddleware "bookshelf/internal/adapter/api/middleware"
	"bookshelf/internal/adapter/api/router"
	"bookshelf/internal/adapter/repository"
	domainrepo "bookshelf/internal/domain/repository"
	"bookshelf/internal/domain/service"
	"bookshelf/internal/infrastructure/ratelimit"
	"bookshelf/internal/infrastructure/storage"
	"bookshelf/internal/usecase"
	"bookshelf/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var (
		bookRepo    domainrepo.BookRepository
		reviewRepo  domainrepo.ReviewRepository
		authClient  *fbauth.Client
		fileService service.FileUploadService
	)

	if cfg.FirebaseProject != "" {
		opt := credentialsOption()

		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		authClient, err = firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}

		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		bookRepo = repository.NewFirestoreBookRepository(firestoreClient)
		reviewRepo = repository.NewFirestoreReviewRepository(firestoreClient, cfg.TxMaxAttempts)
	} else {
		log.Printf("FIREBASE_PROJECT_ID not set, using in-memory store")
		store := repository.NewMemoryStore()
		bookRepo = repository.NewMemoryBookRepository(store)
		reviewRepo = repository.NewMemoryReviewRepository(store)
	}

	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if err != nil {
			log.Fatalf("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		fileService = storageClient
	} else {
		log.Printf("STORAGE_BUCKET not set, image uploads disabled")
		fileService = service.NewUnconfiguredFileService()
	}

	summaryService := service.NewGeminiSummaryService(cfg.GeminiAPIKey)

	bookUseCase := usecase.NewBookUseCase(bookRepo, fileService)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, summaryService)
	seedUseCase := usecase.NewSeedUseCase(bookRepo, reviewRepo)

	handler.Setup(bookUseCase, reviewUseCase, seedUseCase)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Validator = api.NewValidator()

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	rateLimitMiddleware := apimiddleware.NewRateLimitMiddleware(limiter)

	wsHandler := handler.NewWebSocketHandler(bookUseCase, reviewUseCase)

	router.Setup(e, authMiddleware, rateLimitMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)
	router.SetupDevRouter(e, cfg.Environment)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

func credentialsOption() option.ClientOption {
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(serviceAccountJSON))
	}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountPath == "" {
		serviceAccountPath = "./service-account.json"
	}
	log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
	return option.WithCredentialsFile(serviceAccountPath)
}
