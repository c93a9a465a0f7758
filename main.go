package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnector/config"
	"devconnector/database"
	"devconnector/github"
	"devconnector/handlers"
	"devconnector/middleware"
	"devconnector/repository"
	"devconnector/repository/memory"
	"devconnector/routes"
	"devconnector/services"

	"github.com/gin-gonic/gin"
)

// store is a repository.Store with a connection lifecycle.
type store interface {
	repository.Store
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	log.Println("🚀 Starting DevConnector API...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	db, err := connectStore(cfg.Database)
	if err != nil {
		log.Fatal("❌ Failed to connect to the document store: ", err)
	}

	// The GitHub credential is read once here and fixed for the process lifetime.
	gh, err := github.NewDefaultClient(github.Config{
		BaseURL: cfg.Github.BaseURL,
		Token:   cfg.Github.Token,
		Timeout: cfg.Github.Timeout,
	})
	if err != nil {
		log.Fatalf("❌ GitHub client: %v", err)
	}
	defer gh.Close()

	// ===== GIN MODE =====
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
		log.Println("⚙️ Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("⚙️ Running in DEBUG mode")
	}

	tokens := middleware.TokenIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	h := handlers.New(
		services.NewAccountService(db, tokens),
		services.NewProfileService(db, gh),
		services.NewPostService(db),
	)

	router := routes.SetupRouter(h, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecret),
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
		Ping:           db.Ping,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Server error:", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Println("❌ Store disconnect:", err)
	}

	log.Println("👋 Server stopped gracefully")
}

func connectStore(cfg config.Database) (store, error) {
	if cfg.Driver == config.DriverMemory {
		log.Println("⚠️ Using the in-memory store; data is lost on exit")
		return memory.New(), nil
	}

	log.Println("🔌 Connecting to MongoDB...")

	var lastErr error
	for i := 1; i <= cfg.ConnectAttempts; i++ {
		db, err := database.ConnectMongo(context.Background(), cfg.URI, cfg.Name)
		if err == nil {
			log.Println("✅ MongoDB connected successfully")
			return db, nil
		}
		lastErr = err
		log.Printf("❌ MongoDB connection attempt %d failed: %v", i, err)
		if i < cfg.ConnectAttempts {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, lastErr
}
