package main

import (
	"errors"
	"io/fs"
	stdlog "log"
	"os"

	"github.com/benbeisheim/infinichess-backend/internal/config"
	"github.com/benbeisheim/infinichess-backend/internal/controller"
	"github.com/benbeisheim/infinichess-backend/internal/logging"
	"github.com/benbeisheim/infinichess-backend/internal/middleware"
	"github.com/benbeisheim/infinichess-backend/internal/model"
	"github.com/benbeisheim/infinichess-backend/internal/rules"
	"github.com/benbeisheim/infinichess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		stdlog.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		stdlog.Fatalf("config: %v", err)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		stdlog.Fatalf("logging: %v", err)
	}

	board := model.NewBoard()
	model.StandardSetup(board)
	gameService := service.NewGameService(board, rules.NewStandard(), log)

	gameController := controller.NewGameController(gameService, controller.Options{
		LongPollTimeout: cfg.Board.LongPollTimeout,
		MaxWindow:       cfg.Board.MaxWindow,
	}, log)
	wsController := controller.NewWebSocketController(gameService, log)

	app := fiber.New(fiber.Config{
		ErrorHandler:          controller.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods:  "GET, OPTIONS",
		ExposeHeaders: middleware.ClientIDHeader,
	}))
	app.Use(middleware.EnsureClientID())
	app.Use(middleware.RequestLogger(log))

	app.Use("/ws", middleware.WebSocketUpgrade())
	app.Get("/ws", websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	gameController.Register(app)

	if _, err := os.Stat(cfg.StaticDir); err == nil {
		app.Static("/", cfg.StaticDir, fiber.Static{Index: "index.html"})
	} else {
		log.Warn().Str("dir", cfg.StaticDir).Msg("static directory not found, serving API only")
	}

	log.Info().Str("addr", cfg.Addr()).Msg("listening")
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
