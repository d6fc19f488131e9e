/**
 * @description
 * This is the main entry point for the back-office service. It is responsible
 * for initializing all components: configuration, the database pool, the
 * RabbitMQ audit producer, the optional Redis login throttle, the interest
 * accrual scheduler, and the HTTP server. It wires everything together and
 * starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: Optional .env loading for local development.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 * - pkg/rabbitmq: Audit event producer.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/crestbank/backoffice-service/internal/api"
	"github.com/crestbank/backoffice-service/internal/app"
	"github.com/crestbank/backoffice-service/internal/config"
	"github.com/crestbank/backoffice-service/internal/store"
	"github.com/crestbank/backoffice-service/pkg/rabbitmq"
)

func main() {
	// Load a local .env if present; real deployments set environment variables.
	if err := godotenv.Load(); err == nil {
		log.Println("level=info component=bootstrap msg=\"loaded .env file\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.SessionSigningKey) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"session signing key must be configured\" env=SESSION_SIGNING_KEY")
	}

	log.Printf("level=info component=bootstrap msg=\"starting backoffice-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ audit producer; fall back to a no-op publisher
	// so an unavailable broker never blocks branch operations.
	var producer rabbitmq.Publisher = &rabbitmq.EventProducerFallback{}
	if strings.TrimSpace(cfg.RabbitMQURL) != "" {
		realProducer, prodErr := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if prodErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", prodErr)
		} else {
			producer = realProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	} else {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; audit events disabled\" env=RABBITMQ_URL")
	}
	defer producer.Close()

	// Optional Redis login throttle.
	var loginLimiter *app.RedisLoginRateLimiter
	if cfg.LoginAttemptLimit > 0 {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; login throttling disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; login throttling disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; login throttling disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					loginLimiter = app.NewRedisLoginRateLimiter(redisClient, cfg.RedisLoginPrefix)
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	backofficeService := app.NewService(
		repository,
		producer,
		loginLimiter,
		cfg.LoginAttemptLimit,
		time.Duration(cfg.LoginAttemptWindowSecs)*time.Second,
	)

	// Start the nightly interest accrual scheduler.
	schedulerLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	scheduler := app.NewScheduler(backofficeService, schedulerLogger, cfg.InterestAccrualSchedule)
	scheduler.Start()

	// Initialize the API handlers and router.
	handlers := api.NewHandlers(backofficeService, cfg.SessionSigningKey, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}
	router := api.NewRouter(handlers, backofficeService, cfg.SessionSigningKey, allowedOrigins)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
