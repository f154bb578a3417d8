package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	handlerHttp "github.com/mikiasgoitom/Parley/internal/handler/http"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/config"
	database "github.com/mikiasgoitom/Parley/internal/infrastructure/database"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/jwt"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/logger"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/metrics"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/repository/docstore"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/store/mongostore"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/uuidgen"
	"github.com/mikiasgoitom/Parley/internal/infrastructure/validator"
	"github.com/mikiasgoitom/Parley/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Get MongoDB URI and DB name from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable not set")
	}
	dbName := os.Getenv("MONGODB_DB_NAME")
	if dbName == "" {
		log.Fatal("MONGODB_DB_NAME environment variable not set")
	}

	// Establish MongoDB connection
	mongoClient, err := database.NewMongoDBClient(mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect()

	// Register custom validators
	validator.RegisterCustomValidators()

	// Initialize Gin router
	router := gin.Default()

	// Structured logging
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	appLogger := logger.FromZap(zapLogger)

	// Dependency Injection: document store and repository
	db := mongoClient.Client.Database(dbName)
	docStore := mongostore.New(db)
	repoMetrics := metrics.NewRepositoryMetrics(prometheus.DefaultRegisterer)
	userRepo := docstore.NewUserRepository(docStore, zapLogger, repoMetrics)

	// Dependency Injection: Services
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}
	appConfig := config.NewConfig()
	accessExpiry := time.Duration(appConfig.GetAccessTokenExpiryMinutes()) * time.Minute
	refreshExpiry := time.Duration(appConfig.GetRefreshTokenExpiryHours()) * time.Hour
	jwtManager := jwt.NewJWTManager(jwtSecret, accessExpiry, refreshExpiry)
	uuidGenerator := uuidgen.NewGenerator()
	jwtService := jwt.NewJWTService(jwtManager, uuidGenerator)
	appValidator := validator.NewValidator()

	// Dependency Injection: Usecases
	userUsecase := usecase.NewUserUsecase(userRepo, jwtService, appLogger, appConfig, appValidator)

	// Setup API routes
	appRouter := handlerHttp.NewRouter(userUsecase, jwtService)
	appRouter.SetupRoutes(router)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
