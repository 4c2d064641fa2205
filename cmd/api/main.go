package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/logx"
	"github.com/iamasit07/c4search/internal/repository/postgres"
	"github.com/iamasit07/c4search/internal/repository/redis"
	"github.com/iamasit07/c4search/internal/service/analysis"
	"github.com/iamasit07/c4search/internal/service/cleanup"
	"github.com/iamasit07/c4search/internal/service/game"
	transportHttp "github.com/iamasit07/c4search/internal/transport/http"
	"github.com/iamasit07/c4search/internal/transport/http/middleware"
	"github.com/iamasit07/c4search/internal/transport/websocket"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	if envErr != nil {
		envErr = godotenv.Load("../.env")
	}

	cfg := config.LoadConfig()
	logger := logx.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Info().Msg("no .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence is optional; the engine works without it.
	var (
		gameRepo  *postgres.GameRepo
		benchRepo *postgres.BenchRepo
		janitor   cleanup.GameJanitor
		gameStore game.GameRepository
		history   transportHttp.GameStore
		benches   transportHttp.BenchStore
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			logger.Fatal().Err(err).Msg("database unreachable")
		}
		defer db.Close()

		logger.Info().Msg("running database migrations")
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}

		gameRepo = postgres.NewGameRepo(db)
		benchRepo = postgres.NewBenchRepo(db)
		janitor, gameStore, history, benches = gameRepo, gameRepo, gameRepo, benchRepo
	} else {
		logger.Warn().Msg("no DATABASE_URL set, games and bench runs are not persisted")
	}

	var cache analysis.Cache
	if client := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, logx.Component(logger, "redis")); client != nil {
		moveCache := redis.NewMoveCache(client, cfg.MoveCacheTTL)
		defer moveCache.Close()
		cache = moveCache
	}

	analysisService := analysis.NewService(cfg.Engine, cache, logx.Component(logger, "analysis"))
	sessionManager := game.NewSessionManager(gameStore, cfg.Engine, cfg.BotMoveDelay, logx.Component(logger, "game"))
	connManager := websocket.NewConnectionManager()

	cleanupWorker := cleanup.NewWorker(sessionManager, janitor, cfg.CleanupEvery, logx.Component(logger, "cleanup"))
	go cleanupWorker.Start(ctx)

	httpLog := logx.Component(logger, "http")
	moveHandler := transportHttp.NewMoveHandler(analysisService, httpLog)
	historyHandler := transportHttp.NewHistoryHandler(history, httpLog)
	watchHandler := transportHttp.NewWatchHandler(sessionManager)
	benchHandler := transportHttp.NewBenchHandler(benches, cfg.Engine.TTSize, logx.Component(logger, "bench"))
	wsHandler := websocket.NewHandler(connManager, sessionManager, cfg.AllowedOrigins, logx.Component(logger, "ws"))

	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, httpLog))

	router.GET("/api/health", transportHttp.Health)
	router.POST("/api/move", moveHandler.BestMove)
	router.GET("/api/games", historyHandler.GetHistory)
	router.GET("/api/games/:id", historyHandler.GetGameDetails)
	router.GET("/api/live", watchHandler.GetLiveGames)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.POST("/api/bench", benchHandler.Run)
	}

	router.GET("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server exited gracefully")
}
