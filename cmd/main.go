package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-image-share/internal/facades"
	"github.com/sbilibin2017/gw-image-share/internal/handlers"
	"github.com/sbilibin2017/gw-image-share/internal/jwt"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/middlewares"
	"github.com/sbilibin2017/gw-image-share/internal/repositories"
	"github.com/sbilibin2017/gw-image-share/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// Cookie names for the two token classes.
const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// @title gw-image-share API
// @version 1.0.0
// @description Image sharing service: cookie-based auth, image upload to S3, tag and title search with presigned URLs
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name access_token
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, redisExpSecond,
		s3Endpoint, s3Region, s3Bucket, s3AccessKey, s3SecretKey,
		kafkaAddrs, kafkaTopic,
		accessSecret, accessExp, refreshSecret, refreshExp,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, redisExpSecond,
		s3Endpoint, s3Region, s3Bucket, s3AccessKey, s3SecretKey,
		kafkaAddrs, kafkaTopic,
		accessSecret, accessExp, refreshSecret, refreshExp,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, S3, Kafka, logging, and JWT configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns, redisExpSecond int,
	s3Endpoint, s3Region, s3Bucket, s3AccessKey, s3SecretKey string,
	kafkaAddrs, kafkaTopic string,
	accessSecret string, accessExp time.Duration,
	refreshSecret string, refreshExp time.Duration,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "database")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config
	redisHost = getEnv("REDIS_HOST", "localhost")
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	if redisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if redisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}
	// Cached URLs must expire before the presigned URLs they hold
	if redisExpSecond, err = strconv.Atoi(getEnv("REDIS_EXP_SECOND", "3300")); err != nil {
		return
	}

	// S3 config
	s3Endpoint = getEnv("S3_ENDPOINT", "")
	s3Region = getEnv("S3_REGION", "us-east-1")
	s3Bucket = getEnv("S3_BUCKET", "images")
	s3AccessKey = getEnv("S3_ACCESS_KEY", "minioadmin")
	s3SecretKey = getEnv("S3_SECRET_KEY", "minioadmin")

	// Kafka config, empty address list disables event publishing
	kafkaAddrs = getEnv("KAFKA_ADDRS", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "image-events")

	// JWT config, one secret and lifetime per token class. Lifetimes are
	// duration strings such as "15m" or "168h".
	accessSecret = getEnv("JWT_ACCESS_SECRET_KEY", "my_super_secret_key")
	if accessExp, err = time.ParseDuration(getEnv("JWT_ACCESS_EXP", "15m")); err != nil {
		return
	}
	refreshSecret = getEnv("JWT_REFRESH_SECRET_KEY", "my_other_super_secret_key")
	if refreshExp, err = time.ParseDuration(getEnv("JWT_REFRESH_EXP", "168h")); err != nil {
		return
	}

	return
}

// run initializes the logger, database, Redis, S3, Kafka, and HTTP server.
// It sets up routes, applies middleware, and handles graceful shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns, redisExpSecond int,
	s3Endpoint, s3Region, s3Bucket, s3AccessKey, s3SecretKey string,
	kafkaAddrs, kafkaTopic string,
	accessSecret string, accessExp time.Duration,
	refreshSecret string, refreshExp time.Duration,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		logger.Log.Errorw("PostgreSQL connection error", "error", err)
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		logger.Log.Errorw("PostgreSQL ping failed", "error", err)
		return err
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password:     redisPassword,
		DB:           redisDB,
		PoolSize:     redisPoolSize,
		MinIdleConns: redisMinIdleConns,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Errorw("Redis connection error", "error", err)
		return err
	}
	defer rdb.Close()

	// Connect to S3
	s3Facade, err := facades.NewS3Facade(ctx, s3Endpoint, s3Region, s3Bucket, s3AccessKey, s3SecretKey)
	if err != nil {
		logger.Log.Errorw("S3 client error", "error", err)
		return err
	}

	// Kafka writer, optional
	var kafkaWriter services.KafkaWriter
	if kafkaAddrs != "" {
		w := &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(kafkaAddrs, ",")...),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer w.Close()
		kafkaWriter = w
	}

	// Initialize JWT codecs, one per token class
	accessJWT := jwt.New(
		jwt.WithSecretKey(accessSecret),
		jwt.WithExpiration(accessExp),
		jwt.WithCookieName(accessCookieName),
	)
	refreshJWT := jwt.New(
		jwt.WithSecretKey(refreshSecret),
		jwt.WithExpiration(refreshExp),
		jwt.WithCookieName(refreshCookieName),
	)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	imageWriteRepo := repositories.NewImageWriteRepository(db)
	imageReadRepo := repositories.NewImageReadRepository(db)
	urlCacheRepo := repositories.NewImageURLCacheRepository(rdb, time.Duration(redisExpSecond)*time.Second)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, accessJWT, refreshJWT)
	userService := services.NewUserService(userReadRepo, userWriteRepo)
	imageService := services.NewImageService(imageWriteRepo, imageReadRepo, s3Facade, urlCacheRepo, kafkaWriter)

	// Initialize handlers
	signupHandler := handlers.NewSignupHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService, accessJWT, refreshJWT)
	refreshHandler := handlers.NewRefreshHandler(authService, refreshJWT, accessJWT)
	getProfileHandler := handlers.NewGetProfileHandler(userService)
	updateProfileHandler := handlers.NewUpdateProfileHandler(userService)
	listUsersHandler := handlers.NewListUsersHandler(userService)
	getUserHandler := handlers.NewGetUserHandler(userService)
	listUserImagesHandler := handlers.NewListUserImagesHandler(imageService)
	listImagesHandler := handlers.NewListImagesHandler(imageService)
	getImageHandler := handlers.NewGetImageHandler(imageService)
	listMyImagesHandler := handlers.NewListMyImagesHandler(imageService)
	uploadImageHandler := handlers.NewUploadImageHandler(imageService)
	updateImageHandler := handlers.NewUpdateImageHandler(imageService)
	deleteImageHandler := handlers.NewDeleteImageHandler(imageService)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware())

	// Public routes
	r.Post("/auth/signup", signupHandler)
	r.Post("/auth/login", loginHandler)
	r.Post("/auth/refresh", refreshHandler)
	r.Get("/images", listImagesHandler)
	r.Get("/images/{id}", getImageHandler)
	r.Get("/users", listUsersHandler)
	r.Get("/users/{id}", getUserHandler)
	r.Get("/users/{id}/images", listUserImagesHandler)

	// Protected routes, authenticated by the access token cookie
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(accessJWT))
		r.Get("/me", getProfileHandler)
		r.Patch("/me", updateProfileHandler)
		r.Get("/me/images", listMyImagesHandler)
		r.Post("/me/images", uploadImageHandler)
		r.Patch("/me/images/{id}", updateImageHandler)
		r.Delete("/me/images/{id}", deleteImageHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
