package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/jobs"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/storage"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Activity Proposal API
// @version         1.0
// @description     API for submitting and approving Activity Proposal Forms (APFs).
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "postgres")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Seed(db); err != nil {
		log.Printf("WARNING: Failed to seed directories: %v", err)
	}

	port := getenv("PORT", "8080")

	// Blob store for APF attachment forms
	store, err := storage.NewLocalStore(storage.Config{
		BaseURL:  getenv("STORAGE_BASE_URL", "http://localhost:"+port),
		LocalDir: getenv("STORAGE_DIR", "./uploads"),
	})
	if err != nil {
		log.Fatalf("Storage initialization failed: %v", err)
	}

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(userRepo, orgRepo)
	proposalService := service.NewProposalService(proposalRepo, venueRepo, txManager, store)
	uploadService := service.NewUploadService(store)
	directoryService := service.NewDirectoryService(orgRepo, venueRepo)
	calendarService := service.NewCalendarService(proposalRepo, getenv("HOLIDAY_FEED_URL", "https://date.nager.at/api/v3/PublicHolidays"))
	statisticsService := service.NewStatisticsService(proposalRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	proposalHandler := handler.NewProposalHandler(proposalService)
	uploadHandler := handler.NewUploadHandler(uploadService, store)
	directoryHandler := handler.NewDirectoryHandler(directoryService)
	calendarHandler := handler.NewCalendarHandler(calendarService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Warm the holiday cache, then keep it fresh nightly
	scheduler := jobs.NewScheduler(calendarService)
	go scheduler.RefreshHolidayCache()
	scheduler.Start()
	defer scheduler.Stop()

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	proposalHandler.RegisterRoutes(router.Group(""))
	uploadHandler.RegisterRoutes(router.Group(""))
	directoryHandler.RegisterRoutes(router.Group(""))
	calendarHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
