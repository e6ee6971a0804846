package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/carboneio/sclone/core/loader"
	"github.com/carboneio/sclone/core/logger"
	"github.com/carboneio/sclone/core/middleware/auth"
	"github.com/carboneio/sclone/core/middleware/rayid"
	"github.com/carboneio/sclone/feature/pairsync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/carboneio/sclone/docs/swagger"
)

// @title sclone API
// @version 1.0
// @description Status and control API of the sclone daemon.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync daemon",
	Long:  `Runs a sync cycle on every interval and serves the status API.`,
	RunE:  runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	logg := rt.log
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := rt.service(ctx)
	if err != nil {
		return err
	}

	var app *fiber.App
	if rt.cfg.Server.Enabled {
		app, err = newApp(ctx, rt, svc)
		if err != nil {
			return err
		}
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(rt.cfg.Server.Addr()); err != nil {
				logg.Error("Server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	done := make(chan error, 1)
	go func() { done <- svc.RunEvery(ctx, rt.cfg.Sync.Interval) }()

	<-ctx.Done()
	logg.Info("Shutting down...")
	if app != nil {
		_ = app.Shutdown()
	}
	// Wait for the scheduled and triggered cycles so the cache is not left
	// half written.
	err = <-done
	svc.Wait()
	return err
}

// newApp builds the Fiber application serving the status API.
func newApp(ctx context.Context, rt *deps, svc *pairsync.Service) (*fiber.App, error) {
	logg := rt.log
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID first so every log line carries it.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// Public routes.
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

	mgr := loader.NewManager()
	mgr.Register(pairsync.NewFeature(ctx, svc))
	if err := mgr.LoadAll(app); err != nil {
		return nil, err
	}
	return app, nil
}
