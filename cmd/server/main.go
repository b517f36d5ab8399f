package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Skufu/visitcast/internal/audit"
	"github.com/Skufu/visitcast/internal/roster"
	"github.com/Skufu/visitcast/internal/scoring"
	"github.com/Skufu/visitcast/internal/visits"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	GinMode        string `env:"GIN_MODE" envDefault:"release"`
	RosterPath     string `env:"ROSTER_PATH" envDefault:"data/patient_names.json"`
	RosterTable    string `env:"ROSTER_TABLE"`
	ModelPath      string `env:"MODEL_PATH" envDefault:"data/patient_visit_model.json"`
	ModelURL       string `env:"MODEL_URL"`
	EnableDB       bool   `env:"ENABLE_DB" envDefault:"false"`
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	patients, err := loadRoster(ctx, cfg)
	if err != nil {
		log.Fatalf("roster load failed: %v", err)
	}
	log.Printf("loaded %d patients", patients.Len())

	scorer, modelName, err := loadScorer(cfg)
	if err != nil {
		log.Fatalf("model load failed: %v", err)
	}
	log.Printf("scoring with model %q", modelName)

	app := &App{Roster: patients}
	var recorder visits.Recorder
	if cfg.EnableDB {
		store, err := openPredictionLog(ctx, cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer store.Close()
		recorder = store
		app.Log = store
		app.DB = store
	}
	app.Predictor = visits.NewService(patients, scorer, modelName, recorder)

	staticRoot := detectStaticRoot()
	router := setupRouter(app, staticRoot)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Printf("server listening on :%s", cfg.Port)
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}
	if cfg.DatabaseDriver != "postgres" && cfg.DatabaseDriver != "sqlite" {
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", cfg.DatabaseDriver)
	}
	if cfg.RosterTable != "" && (cfg.DatabaseURL == "" || cfg.DatabaseDriver != "postgres") {
		return nil, fmt.Errorf("ROSTER_TABLE requires a postgres DATABASE_URL")
	}

	return cfg, nil
}

func loadRoster(ctx context.Context, cfg *Config) (*roster.Set, error) {
	if cfg.RosterTable == "" {
		return roster.LoadFile(cfg.RosterPath)
	}

	pool, err := connectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return roster.LoadPostgres(loadCtx, pool, cfg.RosterTable)
}

func loadScorer(cfg *Config) (scoring.Scorer, string, error) {
	if cfg.ModelURL != "" {
		return scoring.NewRemoteScorer(cfg.ModelURL), cfg.ModelURL, nil
	}
	model, err := scoring.LoadLinearModel(cfg.ModelPath)
	if err != nil {
		return nil, "", err
	}
	return model, model.Name, nil
}

func openPredictionLog(ctx context.Context, cfg *Config) (*audit.Store, error) {
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := audit.Open(connCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(connCtx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func setupRouter(app *App, staticRoot string) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept-Language"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.Static("/static", staticRoot)
	router.StaticFile("/", filepath.Join(staticRoot, "index.html"))
	router.StaticFile("/app.js", filepath.Join(staticRoot, "app.js"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if app.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := app.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	api := router.Group("/api")
	api.GET("/patients", app.listPatients)
	api.POST("/predictions", app.predict)
	api.GET("/predictions/recent", app.recentPredictions)

	ins := api.Group("/insights")
	ins.GET("/overview", overviewHandler)
	ins.GET("/visits-over-time", visitsOverTimeHandler)
	ins.GET("/visits-by-weekday", visitsByWeekdayHandler)
	ins.GET("/visit-distribution", visitDistributionHandler)
	ins.GET("/top-patients", topPatientsHandler)

	return router
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// detectStaticRoot finds the web/ directory holding index.html from the working
// directory or up to two parents.
func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		web := filepath.Join(dir, "web")
		if fileExists(filepath.Join(web, "index.html")) {
			return web
		}
	}

	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
