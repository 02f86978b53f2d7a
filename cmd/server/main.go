package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	appcatalog "github.com/ecom/backend/internal/application/catalog"
	appidentity "github.com/ecom/backend/internal/application/identity"
	apptrade "github.com/ecom/backend/internal/application/trade"
	domainpayment "github.com/ecom/backend/internal/domain/payment"
	"github.com/ecom/backend/internal/infrastructure/auth"
	"github.com/ecom/backend/internal/infrastructure/cache"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/ecom/backend/internal/infrastructure/logger"
	infrapayment "github.com/ecom/backend/internal/infrastructure/payment"
	"github.com/ecom/backend/internal/infrastructure/persistence"
	"github.com/ecom/backend/internal/infrastructure/storage"
	"github.com/ecom/backend/internal/infrastructure/telemetry"
	"github.com/ecom/backend/internal/interfaces/http/handler"
	"github.com/ecom/backend/internal/interfaces/http/middleware"
	"github.com/ecom/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		ProfilerEnabled:   cfg.Telemetry.ProfilerEnabled,
		ProfilerEndpoint:  cfg.Telemetry.ProfilerEndpoint,
	}
	if telCfg.ServiceName == "" {
		telCfg.ServiceName = cfg.App.Name
	}
	provider, err := telemetry.New(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = provider.BridgeLogger(log)

	metrics, err := telemetry.NewStoreMetrics(provider.Meter("store"))
	if err != nil {
		log.Fatal("Failed to create store metrics", zap.Error(err))
	}

	db := connectDatabase(cfg, log)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	var browseCache appcatalog.BrowseCache
	if cfg.Cache.Enabled {
		if redisClient != nil {
			browseCache = cache.NewRedisBrowseCacheWithClient(redisClient, cfg.Cache.KeyPrefix)
		} else {
			browseCache = cache.NewInMemoryBrowseCache()
		}
	}

	objectStorage := buildObjectStorage(cfg, log)
	gateway := buildPaymentGateway(cfg, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	checkoutStore := persistence.NewGormCheckoutStore(db.DB)

	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, appidentity.DefaultAuthServiceConfig(), log)
	userService := appidentity.NewUserService(userRepo, log)
	categoryService := appcatalog.NewCategoryService(categoryRepo, productRepo, browseCache, log)

	productCfg := appcatalog.DefaultProductServiceConfig()
	if cfg.Cache.TTL > 0 {
		productCfg.CacheTTL = cfg.Cache.TTL
	}
	if cfg.Storage.PresignExpiration > 0 {
		productCfg.PhotoURLTTL = cfg.Storage.PresignExpiration
	}
	productService := appcatalog.NewProductService(productRepo, categoryRepo, objectStorage, browseCache, metrics, productCfg, log)

	checkoutService := apptrade.NewCheckoutService(gateway, productRepo, checkoutStore, metrics, log)
	orderService := apptrade.NewOrderService(orderRepo, checkoutStore, gateway, metrics, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(telCfg.ServiceName))
	}
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimitWithSize(cfg.HTTP.MaxBodySize))
	} else {
		engine.Use(middleware.BodyLimit())
	}

	if cfg.HTTP.RateLimitEnabled {
		rlCfg := middleware.DefaultRateLimiterConfig()
		if cfg.HTTP.RateLimitRequests > 0 && cfg.HTTP.RateLimitWindow > 0 {
			rlCfg.Rate = float64(cfg.HTTP.RateLimitRequests) / cfg.HTTP.RateLimitWindow.Seconds()
			rlCfg.Burst = cfg.HTTP.RateLimitRequests
		}
		limiter := middleware.NewRateLimiter(rlCfg)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/health",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/forgot-password",
			"/api/v1/auth/refresh-token",
		},
		SkipFunc: publicCatalogRoute,
		Logger:   log,
	}))

	handler.NewHealthHandler(db.DB, redisClient).Register(engine)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewAuthHandler(authService, log)).
		Register(handler.NewUserHandler(userService, log)).
		Register(handler.NewCategoryHandler(categoryService, log)).
		Register(handler.NewProductHandler(productService, log)).
		Register(handler.NewOrderHandler(orderService, log)).
		Register(handler.NewPaymentHandler(checkoutService, log)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := provider.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}

// connectDatabase opens the PostgreSQL connection with a zap-backed GORM
// logger and, when enabled, the OpenTelemetry query tracing plugin.
func connectDatabase(cfg *config.Config, log *zap.Logger) *persistence.Database {
	var opts []logger.GormLoggerOption
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		opts = append(opts, logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), opts...)

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.DB.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Database.DBName))); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	return db
}

// connectRedis returns a shared Redis client, or nil when Redis is not
// configured or unreachable. Callers fall back to in-memory stores on nil.
func connectRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	if cfg.Redis.Host == "" {
		log.Info("Redis not configured, using in-memory token blacklist and cache")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-memory stores", zap.Error(err))
		_ = client.Close()
		return nil
	}

	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	return client
}

func buildObjectStorage(cfg *config.Config, log *zap.Logger) appcatalog.ObjectStorageService {
	if cfg.Storage.Bucket == "" {
		log.Warn("Object storage not configured, product photos are kept in memory")
		return storage.NewMemoryObjectStorage()
	}

	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	log.Info("Object storage ready",
		zap.String("bucket", cfg.Storage.Bucket),
		zap.String("region", cfg.Storage.Region),
	)
	return s3Storage
}

func buildPaymentGateway(cfg *config.Config, log *zap.Logger) domainpayment.Gateway {
	if cfg.Payment.MerchantID == "" {
		log.Warn("Card gateway not configured, using the sandbox gateway")
		return infrapayment.NewSandboxGateway()
	}

	gateway, err := infrapayment.NewCardGateway(&cfg.Payment)
	if err != nil {
		log.Fatal("Failed to initialize card gateway", zap.Error(err))
	}
	log.Info("Card gateway ready", zap.String("environment", cfg.Payment.Environment))
	return gateway
}

// publicCatalogRoute reports whether the request targets a storefront
// browse endpoint that does not require authentication. Admin catalog
// management shares the same path space but stays protected.
func publicCatalogRoute(c *gin.Context) bool {
	path := c.Request.URL.Path
	switch c.Request.Method {
	case http.MethodGet:
		if path == "/api/v1/product/all" {
			return false
		}
		return strings.HasPrefix(path, "/api/v1/product") || strings.HasPrefix(path, "/api/v1/category")
	case http.MethodPost:
		return path == "/api/v1/product/filters"
	}
	return false
}
