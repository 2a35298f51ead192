package server

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Frawatson/FitLog-sub000/internal/auth"
	"github.com/Frawatson/FitLog-sub000/internal/config"
	"github.com/Frawatson/FitLog-sub000/internal/history"
	"github.com/Frawatson/FitLog-sub000/internal/live"
	"github.com/Frawatson/FitLog-sub000/internal/run"
)

type Server struct {
	App   *fiber.App
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redis.Client
	Live  *live.Hub
	Runs  *run.Manager
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := live.NewHub(redisClient)

	var recorder run.OwnerRecorder
	var historySvc *history.Service
	if db != nil {
		historySvc = history.NewService(db)
		recorder = historySvc
	}

	notify := func(snap run.Snapshot) {
		payload, err := json.Marshal(snap)
		if err != nil {
			log.Printf("live: marshal snapshot: %v", err)
			return
		}
		hub.Broadcast(snap.SessionID, payload)
	}

	tick := time.Duration(cfg.TickIntervalMS) * time.Millisecond

	s := &Server{
		App:   app,
		Cfg:   cfg,
		DB:    db,
		Redis: redisClient,
		Live:  hub,
		Runs:  run.NewManager(recorder, notify, tick),
	}

	registerRoutes(s, historySvc)
	return s
}

func registerRoutes(s *Server, historySvc *history.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	run.RegisterRoutes(s.App.Group("/runs"), s.Runs, jwtMiddleware)
	if historySvc != nil {
		history.RegisterRoutes(s.App.Group("/history"), historySvc, jwtMiddleware)
	}
	live.RegisterRoutes(s.App.Group("/live"), s.Live, jwtMiddleware)
}
