package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coralbank/account-service/internal/command"
	"github.com/coralbank/account-service/internal/config"
	"github.com/coralbank/account-service/internal/events"
	"github.com/coralbank/account-service/internal/handler"
	"github.com/coralbank/account-service/internal/middleware"
	"github.com/coralbank/account-service/internal/query"
	"github.com/coralbank/account-service/internal/repository"
	redisClient "github.com/coralbank/account-service/internal/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
)

const numberingLockKey = "lock:account:number"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Database connection (write store)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Redis connection (read cache + numbering lock + event streaming)
	redis, err := redisClient.NewClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	publisher := events.NewPublisher(redis.Client)
	numberingLock := redisClient.NewMutex(redis.Client, numberingLockKey, 5*time.Second)

	userRepo := repository.NewUserRepository(db)
	writeRepo := repository.NewAccountWriteRepository(db)
	readRepo := repository.NewAccountReadRepository(db, redis.Client)

	directory := repository.NewAccountDirectory(writeRepo, readRepo)

	commandSvc := command.NewAccountCommandService(userRepo, directory, numberingLock, publisher)
	querySvc := query.NewAccountQueryService(readRepo)

	accountHandler := handler.NewAccountHandler(commandSvc, querySvc)

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1/accounts")
	{
		v1.POST("", accountHandler.OpenAccount)
		v1.DELETE("", accountHandler.CloseAccount)
		v1.GET("", accountHandler.ListAccounts)
		v1.GET("/:id", accountHandler.GetAccount)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Account service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown: drain in-flight requests, then let the deferred
	// closes release the database and Redis connections.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
