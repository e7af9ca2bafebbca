package app

import (
	"context"
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dice-settle/internal/audit"
	"dice-settle/internal/cache"
	"dice-settle/internal/casino"
	"dice-settle/internal/config"
	"dice-settle/internal/db"
	"dice-settle/internal/event"
	"dice-settle/internal/jobs"
	"dice-settle/internal/ledger"
	"dice-settle/internal/logger"
	"dice-settle/internal/monitoring"
	"dice-settle/internal/security"
	"dice-settle/internal/wallet"
	"dice-settle/internal/ws"
)

type Server struct {
	app    *fiber.App
	cfg    *config.Config
	db     *sql.DB
	bus    *event.Bus
	jobs   *jobs.Manager
	redis  *cache.Redis
	Casino *casino.Service
}

func NewServer(cfg *config.Config) (*Server, error) {
	database, err := db.Init(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var (
		resultCache cache.Cache = cache.Noop{}
		rdb         *cache.Redis
	)
	if cfg.RedisAddr != "" {
		rdb = cache.NewRedis(cfg.RedisAddr)
		if err := rdb.Ping(context.Background()); err != nil {
			logger.Log.Warn("redis unavailable, result cache disabled", zap.Error(err))
			rdb.Close()
			rdb = nil
		} else {
			resultCache = rdb
		}
	}

	monitoring.Init()

	bus := event.NewBus()
	hub := ws.NewHub()
	ledgerService := ledger.New(database)
	walletService := wallet.New(database, ledgerService)
	auditService := audit.New(database)

	casinoService := casino.NewService(database, walletService, auditService, bus, casino.Options{
		House:      cfg.HousePubkey,
		MaxBet:     cfg.MaxBet,
		BetTimeout: cfg.BetTimeout,
		Cache:      resultCache,
		ResultTTL:  cfg.ResultTTL,
	})
	casino.RegisterConsumers(bus, casinoService, auditService, hub)

	manager := jobs.New()
	manager.Register(jobs.NewRefundJob(casinoService, cfg.RefundInterval))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	// Label by route template after routing; fiber reuses request buffers.
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		monitoring.HttpRequests.WithLabelValues(
			utils.CopyString(c.Method()),
			utils.CopyString(c.Route().Path),
		).Inc()
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": hub.Clients()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(hub.Handler))

	api := app.Group("/api", security.APIKeyGuard(cfg.APIKey))
	wallet.RegisterRoutes(api, walletService)
	casino.RegisterRoutes(api, casinoService)

	admin := app.Group("/admin", security.AdminGuard(cfg.AdminToken))
	wallet.RegisterAdminRoutes(admin, walletService)
	casino.RegisterAdminRoutes(admin, casinoService)

	return &Server{
		app:    app,
		cfg:    cfg,
		db:     database,
		bus:    bus,
		jobs:   manager,
		redis:  rdb,
		Casino: casinoService,
	}, nil
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs background jobs and serves HTTP until the listener stops.
func (s *Server) Start(ctx context.Context) error {
	go s.jobs.Start(ctx)

	if _, err := s.Casino.OpenVault(ctx); err != nil {
		return err
	}

	logger.Log.Info("server listening", zap.String("port", s.cfg.Port))
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.bus.Wait()
	if s.redis != nil {
		s.redis.Close()
	}
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return err
}
