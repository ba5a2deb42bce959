package server

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/hub"
	"github.com/bhuan/monad-plays-pokemon/internal/relay"
)

// Options configures the HTTP and websocket surface.
type Options struct {
	StaticDir string
	Hub       *hub.Hub
	Relay     *relay.Relay // nil when the relay is disabled
}

// New assembles the fiber app: static assets, health, the two
// spectator websocket channels, and the relay endpoints.
func New(opts Options, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "monad-plays-pokemon",
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "viewers": opts.Hub.ViewerCount()})
	})

	upgradeGuard := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	// Binary frame channel.
	app.Use("/stream", upgradeGuard)
	app.Get("/stream", websocket.New(func(c *websocket.Conn) {
		opts.Hub.ServeFrames(c)
	}))

	// Structured event channel.
	app.Use("/ws", upgradeGuard)
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		opts.Hub.ServeEvents(c)
	}))

	if opts.Relay != nil {
		opts.Relay.RegisterRoutes(app)
	}

	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}

	return app
}
