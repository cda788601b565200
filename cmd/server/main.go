package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"eqcoach/config"
	"eqcoach/controllers"
	"eqcoach/db"
	"eqcoach/internal/logging"
	"eqcoach/internal/session"
	"eqcoach/middlewares"
	"eqcoach/routes"
	"eqcoach/services"
	"eqcoach/utils"
	"eqcoach/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./config/config.prod.yml", "path to the YAML config file")
	flag.Parse()

	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	utils.SetJWTSecret(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiry)*time.Minute)

	store, err := db.ConnectMongoDB(ctx, cfg.Database.URI, logger)
	if err != nil {
		return err
	}
	defer store.Disconnect(context.Background())
	logger.Info("connected to MongoDB")

	rdb, err := session.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	gemini, err := services.NewGeminiClient(ctx, services.GeminiOptions{
		APIKey:          cfg.Gemini.ApiKey,
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		TopK:            cfg.Gemini.TopK,
		TopP:            cfg.Gemini.TopP,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	})
	if err != nil {
		return err
	}

	policy := services.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     services.ExponentialBackoff(cfg.Retry.BaseDelay),
	}
	snapshots := session.NewSnapshotStore(rdb, 0)
	eventLog := session.NewEventLog(rdb)
	limiter := session.NewRateLimiter(rdb, session.RateLimitConfig{
		MaxGenerations: cfg.RateLimit.Generations,
		Window:         cfg.RateLimit.Window,
	})

	analyzer := services.NewAnalyzer(gemini, policy, logger)
	journeys := services.NewJourneyService(services.JourneyDeps{
		Analyzer: analyzer,
		Store:    snapshots,
		Locker:   snapshots,
		History:  store,
		Log:      logger,
	})
	sessions := services.NewSessionManager(services.DebateDeps{
		Flow:    services.NewDebateFlow(cfg.Debate.TurnSeconds),
		Coach:   services.NewDebateCoach(gemini, policy, logger),
		Store:   snapshots,
		History: store,
		Events:  eventLog,
		Log:     logger,
	})
	defer sessions.Close()
	go sweepSessions(ctx, sessions, sessionSweepInterval)

	router := setupRouter(cfg, logger, handlers{
		auth:    controllers.NewAuthController(store, logger),
		journey: controllers.NewJourneyController(journeys, logger),
		debate:  controllers.NewDebateController(sessions, eventLog, logger),
		coach:   controllers.NewCoachController(analyzer, services.NewCoachChat(gemini, policy, logger), store, logger),
		ws:      websocket.NewDebateHandler(sessions, limiter, cfg.Server.AllowedOrigins, logger),
		limiter: limiter,
	})

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

const sessionSweepInterval = 10 * time.Minute

// sweepSessions drops debates whose snapshots have expired until ctx ends.
func sweepSessions(ctx context.Context, sessions *services.SessionManager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Sweep(ctx)
		}
	}
}

type handlers struct {
	auth    *controllers.AuthController
	journey *controllers.JourneyController
	debate  *controllers.DebateController
	coach   *controllers.CoachController
	ws      *websocket.DebateHandler
	limiter middlewares.Limiter
}

func setupRouter(cfg *config.Config, logger *zap.Logger, h handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Set trusted proxies (adjust as needed)
	router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Public routes for authentication
	routes.SetupAuthRoutes(router, h.auth)

	// Protected routes (JWT auth)
	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware(logger))
	{
		limit := middlewares.RateLimit(h.limiter, logger)
		routes.SetupJourneyRoutes(auth, h.journey, limit)
		routes.SetupDebateRoutes(auth, h.debate, h.ws, limit)
		routes.SetupCoachRoutes(auth, h.coach, limit)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
