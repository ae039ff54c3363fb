// File: homelead/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homelead/config"
	"homelead/database"
	historyRepo "homelead/database/repository/history"
	postcodeRepo "homelead/database/repository/postcode"
	"homelead/handlers"
	"homelead/middleware"
	"homelead/routes"
	"homelead/services/chat"
	"homelead/services/memory"
	"homelead/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// defaultBlockedPostcodes is used when no blacklist is provisioned in
// the database.
var defaultBlockedPostcodes = []string{"0000", "9999", "1234"}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitMemoryCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.New(routes.CORSConfig()))
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	areaRepo := postcodeRepo.NewMongoServiceAreaRepo()
	conversationRepo := historyRepo.NewMongoConversationRepo()

	// Service-area reference data is loaded once and read-only after.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelLoad()

	var serviceable []string
	var err error
	if config.AppConfig.ServiceAreaFile != "" {
		serviceable, err = utils.LoadServiceAreasCSV(config.AppConfig.ServiceAreaFile)
	} else {
		serviceable, err = areaRepo.LoadServiceableAreas(loadCtx)
	}
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load serviceable areas: %v", err)
	}

	blocked, err := areaRepo.LoadBlacklist(loadCtx)
	if err != nil || len(blocked) == 0 {
		blocked = defaultBlockedPostcodes
	}

	areas := utils.ServiceAreaReference{
		Serviceable: serviceable,
		Blacklist:   blocked,
	}

	// services.
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMins) * time.Minute
	sessionStore := chat.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL)
	transcriptStore := memory.NewRedisTranscriptStore(utils.GetMemoryCacheClient(), 24*time.Hour)
	gemini := chat.NewGeminiClient(config.AppConfig.GeminiAPIKey)

	chatSvc := chat.NewDefaultChatService(
		gemini,
		sessionStore,
		areas,
		chat.QualificationRules{
			MinimumBudget: config.AppConfig.MinimumBudget,
			OfficeNumber:  config.AppConfig.OfficeNumber,
			MaxRounds:     config.AppConfig.MaxRounds,
		},
	)
	chatSvc.History = conversationRepo
	chatSvc.Memory = transcriptStore

	chatHandler := handlers.NewChatHandler(chatSvc)

	// Register routes.
	routes.RegisterChatRoutes(router, chatHandler)
	routes.RegisterHealthRoute(router)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetMemoryCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
