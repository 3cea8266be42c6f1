package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/abbasons/ledger/docs"
	"github.com/abbasons/ledger/internal/database"
	mW "github.com/abbasons/ledger/internal/middleware"
	"github.com/abbasons/ledger/internal/services"
)

// @title Offline Ledger API
// @version 1.0
// @description Device-local API for an offline-first scrap trading ledger
// @host localhost:8080
// @BasePath /api/v1
// @schemes http

func main() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	viper.SetEnvPrefix("")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("remote.url", "REMOTE_LEDGER_URL")
	viper.BindEnv("remote.timeout_seconds", "REMOTE_TIMEOUT_SECONDS")
	viper.BindEnv("remote.probe_interval_seconds", "REMOTE_PROBE_INTERVAL_SECONDS")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.SetDefault("remote.url", "http://localhost:9090")
	viper.SetDefault("remote.timeout_seconds", 10)
	viper.SetDefault("remote.probe_interval_seconds", 15)
	viper.SetDefault("jwt.secret_key", "change-me")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	docs.SwaggerInfo.Title = "Offline Ledger API"
	docs.SwaggerInfo.Description = "Device-local API for an offline-first scrap trading ledger"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	storage := services.NewStorageService(redisClient)
	notifier := services.NewNotifier()
	remote := services.NewRemoteLedgerClient(
		viper.GetString("remote.url"),
		time.Duration(viper.GetInt("remote.timeout_seconds"))*time.Second,
	)

	ledger := services.NewLedgerService(storage, remote, notifier)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	ledger.Restore(startCtx)
	cancelStart()

	transactionService := services.NewTransactionService(ledger, storage, notifier)
	authService := services.NewAuthService(redisClient)
	qrService := services.NewQRService(ledger, redisClient)

	monitor := services.NewConnectivityMonitor(remote,
		time.Duration(viper.GetInt("remote.probe_interval_seconds"))*time.Second)
	monitor.OnUp(func() {
		notifier.Success("Back online! Syncing...")
		ledger.SetOnline(true)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := ledger.Flush(ctx); err != nil {
			log.Printf("Reconnect flush failed: %v", err)
		}
	})
	monitor.OnDown(func() {
		ledger.SetOnline(false)
		notifier.Warning("Offline mode - changes saved locally")
	})

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	ledger.SetOnline(monitor.Start(monitorCtx))

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Bundled web app, cached aggressively so it opens offline.
	r.Handle("/app/*", http.StripPrefix("/app/", mW.StaticFileServer("./static/app")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/setup", authService.Setup)
		r.Post("/auth/login", authService.Login)

		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/customers", transactionService.ListCustomers)
			r.Post("/customers", transactionService.CreateCustomer)
			r.Get("/customers/{customerId}/transactions", transactionService.GetCustomerTransactions)
			r.Get("/customers/{customerId}/qr", qrService.GetCustomerQR)

			r.Post("/transactions", transactionService.CreateTransaction)
			r.Get("/transactions/recent", transactionService.GetRecentTransactions)
			r.Post("/calc/amount", transactionService.CalculateAmountHandler)
			r.Get("/balance-sheet", transactionService.GetBalanceSheet)

			r.Get("/sync/status", transactionService.GetSyncStatus)
			r.Post("/sync/flush", transactionService.TriggerFlush)
			r.Post("/sync/refresh", transactionService.RefreshCustomers)
			r.Get("/notifications", transactionService.GetNotifications)
			r.Post("/reset", transactionService.ResetData)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
