package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"trashlink/internal/adapter/api"
	"trashlink/internal/adapter/api/handler"
	apimiddleware "trashlink/internal/adapter/api/middleware"
	"trashlink/internal/adapter/api/router"
	"trashlink/internal/adapter/repository"
	"trashlink/internal/infrastructure/firebase"
	"trashlink/internal/infrastructure/functions"
	"trashlink/internal/infrastructure/ratelimit"
	"trashlink/internal/infrastructure/realtime"
	"trashlink/internal/infrastructure/storage"
	"trashlink/internal/infrastructure/websocket"
	"trashlink/internal/usecase"
	"trashlink/pkg/cache"
	"trashlink/pkg/config"
	"trashlink/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	serviceAccountPath := ""
	if serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.FirebaseProject, serviceAccountPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	collectorRepo := repository.NewFirestoreCollectorRepository(firestoreClient)
	requestRepo := repository.NewFirestoreRequestRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	verificationRepo := repository.NewFirestoreVerificationRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
	smsClient := functions.NewSmsClient(cfg.SmsFunctionURL)

	appCache := cache.New()
	defer appCache.Stop()

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	// Live snapshot listeners with a timer-based re-fetch fallback.
	fetch := func(ctx context.Context, filter realtime.Filter) ([]realtime.Event, error) {
		query := firestoreClient.Collection(filter.Collection).Query
		if filter.Field != "" {
			query = query.Where(filter.Field, "==", filter.Value)
		}
		docs, err := query.Documents(ctx).GetAll()
		if err != nil {
			return nil, err
		}
		events := make([]realtime.Event, 0, len(docs))
		for _, doc := range docs {
			events = append(events, realtime.Event{
				Collection: filter.Collection,
				DocID:      doc.Ref.ID,
				Data:       doc.Data(),
			})
		}
		return events, nil
	}
	subscriber := realtime.NewFallbackSubscriber(
		realtime.NewFirestoreSubscriber(firestoreClient),
		realtime.NewPollingSubscriber(fetch, 15*time.Second),
	)

	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient, appCache, cfg.StateTokenSecret, cfg.AllowAutoRoleSwitch)
	userUseCase := usecase.NewUserUseCase(userRepo, verificationRepo, firebaseAuthClient, smsClient, rateLimiter, appCache)
	collectorUseCase := usecase.NewCollectorUseCase(collectorRepo, userRepo, appCache)
	requestUseCase := usecase.NewRequestUseCase(requestRepo, userRepo, collectorRepo, authUseCase, rateLimiter, wsManager)
	chatUseCase := usecase.NewChatUseCase(chatRepo, requestRepo, userRepo, rateLimiter, wsManager)

	handler.Setup(authUseCase, userUseCase, collectorUseCase, requestUseCase, chatUseCase)
	handler.SetupHealthHandler(firestoreClient)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.GeneralRateLimit())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	roleMiddleware := apimiddleware.NewRoleMiddleware(userRepo)

	chatHandler := handler.GetChatHandler()
	fileHandler := handler.NewFileHandler(storageClient)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, subscriber, userRepo)

	router.Setup(e, authMiddleware, roleMiddleware)
	router.SetupChatRouter(e, chatHandler, authMiddleware)
	router.SetupFileRouter(e, fileHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	logger.Info("Starting server on port %s (environment: %s)", cfg.ServerPort, cfg.Environment)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
