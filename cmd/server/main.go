package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/stridelab/shoefit/internal/apperrors"
	"github.com/stridelab/shoefit/internal/cache"
	"github.com/stridelab/shoefit/internal/catalog"
	"github.com/stridelab/shoefit/internal/engine"
	"github.com/stridelab/shoefit/internal/monitoring"
	"github.com/stridelab/shoefit/internal/ratelimit"
	"github.com/stridelab/shoefit/internal/store"
	"github.com/stridelab/shoefit/internal/types"
)

const version = "1.0.0"

const recommendationsPath = "/api/recommendations"

type config struct {
	Port           string
	DataDir        string
	CatalogPath    string
	StrictCatalog  bool
	Debug          bool
	CacheTTL       time.Duration
	RateLimit      ratelimit.Config
	AllowedOrigins []string
}

func loadConfig() config {
	return config{
		Port:          getEnvOrDefault("PORT", "8080"),
		DataDir:       getEnvOrDefault("DATA_DIR", "./data"),
		CatalogPath:   getEnvOrDefault("CATALOG_PATH", "./data/catalog.json"),
		StrictCatalog: getEnvOrDefault("CATALOG_STRICT", "false") == "true",
		Debug:         getEnvOrDefault("DEBUG", "false") == "true",
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_MINUTES", 15)) * time.Minute,
		RateLimit: ratelimit.Config{
			RequestsPerPeriod: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
			Period:            time.Minute,
			Burst:             getEnvInt("RATE_LIMIT_BURST", 5),
		},
		AllowedOrigins: []string{getEnvOrDefault("ALLOWED_ORIGIN", "*")},
	}
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := monitoring.NewLogger(slog.LevelInfo)
	cfg := loadConfig()

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	db, err := store.New(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer apperrors.SafeClose(db, "database")

	shoes, err := loadShoes(db, cfg.CatalogPath)
	if err != nil {
		logger.Error("Failed to load shoe catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}

	shoeCatalog, err := catalog.New(shoes, cfg.StrictCatalog)
	if err != nil {
		logger.Error("Catalog rejected", "error", err)
		os.Exit(1)
	}
	logger.Info("Catalog loaded", "shoes", shoeCatalog.Len())

	if report := shoeCatalog.ValidateAll(); !report.Valid {
		for _, problem := range report.Errors {
			logger.Warn("Catalog data issue", "problem", problem)
		}
	}

	eng := engine.New(shoeCatalog, engine.WithDebug(cfg.Debug))

	metrics, registry := monitoring.NewMetrics()
	appCache := cache.New(cfg.CacheTTL)
	limiter := ratelimit.New(cfg.RateLimit)

	router := setupRouter(cfg, logger, eng, db, metrics, registry, appCache, limiter)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}

// loadShoes reads the JSON catalog, refreshes the sqlite copy, and
// returns the stored rows. The database is the source of truth once
// seeded so manual edits survive a missing catalog file.
func loadShoes(db *store.DB, catalogPath string) ([]types.Shoe, error) {
	fileCatalog, err := catalog.Load(catalogPath, false)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Catalog file missing, serving stored shoes only", "path", catalogPath)
			return db.ListShoes()
		}
		return nil, err
	}

	if err := db.Seed(fileCatalog.Shoes()); err != nil {
		return nil, err
	}
	return db.ListShoes()
}

func setupRouter(
	cfg config,
	logger *slog.Logger,
	eng *engine.Engine,
	db *store.DB,
	metrics *monitoring.Metrics,
	registry *prometheus.Registry,
	appCache *cache.Cache,
	limiter *ratelimit.Limiter,
) *gin.Engine {
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")

	r.Use(requestID())
	r.Use(monitoring.RequestLogger(logger))
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())
	r.Use(limiter.Middleware(metrics))
	r.Use(appCache.Middleware(recommendationsPath, metrics))

	r.POST(recommendationsPath, func(c *gin.Context) {
		start := time.Now()

		var quiz types.QuizPayload
		if err := c.ShouldBindJSON(&quiz); err != nil {
			appErr := apperrors.NewValidationError("Invalid request body", err.Error())
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		response, err := eng.Recommend(quiz)
		if err != nil {
			appErr := apperrors.ToAppError(err)
			apperrors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		metrics.RecordRecommendation(time.Since(start), len(response.Rotation))
		c.JSON(http.StatusOK, response)
	})

	r.GET(recommendationsPath, func(c *gin.Context) {
		stats := eng.CatalogStats()

		lastUpdated := ""
		if db != nil {
			if ts, err := db.LastUpdated(); err == nil && !ts.IsZero() {
				lastUpdated = ts.Format(time.RFC3339)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"shoesAvailable": stats.Total,
			"lastUpdated":    lastUpdated,
			"version":        version,
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// requestID tags every request with a UUID so log lines can be
// correlated across middleware.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
