package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	h "github.com/Shray90/YalaCarves-sub001/internal/http"
	"github.com/Shray90/YalaCarves-sub001/internal/notify"
	"github.com/Shray90/YalaCarves-sub001/internal/repository"
	"github.com/Shray90/YalaCarves-sub001/internal/service"
)

type Config struct {
	HTTPPort        string
	JWTSecret       string
	PostmarkToken   string
	EmailSender     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	DB              repository.Credentials
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid DB_PORT: %v", err)
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		PostmarkToken:   os.Getenv("POSTMARK_API_TOKEN"),
		EmailSender:     getEnv("EMAIL_SENDER", "orders@yalacarves.com"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "yalacarves"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	cfg := loadConfig()

	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	var notifier service.Notifier
	if cfg.PostmarkToken != "" {
		notifier = notify.NewPostmarkNotifier(cfg.PostmarkToken, cfg.EmailSender)
	} else {
		notifier = notify.NoopNotifier{}
	}

	authService := service.NewAuthService(repo, []byte(cfg.JWTSecret))
	orderService := service.NewOrderService(repo, repo, repo, notifier)

	authHandler := h.NewAuthHandler(authService)
	orderHandler := h.NewOrderHandler(orderService)
	productHandler := h.NewProductHandler(repo)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/products", productHandler.List)
		r.Get("/products/{product_id}", productHandler.Get)
		r.Get("/categories", productHandler.Categories)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware(authService))

			r.Get("/me", authHandler.Me)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.CreateOrder)
				r.Get("/", orderHandler.ListOrders)
				r.Get("/{order_id}", orderHandler.GetOrder)
				r.Post("/{order_id}/cancel", orderHandler.CancelOrder)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.AdminOnly)
				r.Put("/orders/{order_id}/status", orderHandler.UpdateStatus)
				r.Put("/orders/{order_id}/payment", orderHandler.UpdatePayment)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Yala Carves storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
