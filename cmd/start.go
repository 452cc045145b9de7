package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"azuread-connector/core/auth"
	"azuread-connector/core/config"
	"azuread-connector/core/database"
	"azuread-connector/core/loader"
	"azuread-connector/core/logger"
	"azuread-connector/core/middleware/rayid"
	"azuread-connector/core/syncstate"

	"azuread-connector/feature/datasets"
	"azuread-connector/feature/login"
	"azuread-connector/feature/planner"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the connector server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Checkpoint Database (Optional)
		var checkpoints *syncstate.Store
		if cfg.Database.Enabled {
			if db, err := database.Connect(cfg.Database); err != nil {
				logg.Warn("Optional checkpoint database connection failed", zap.Error(err))
			} else if store := syncstate.NewStore(db); store.Migrate() != nil {
				logg.Warn("Checkpoint table migration failed")
			} else {
				checkpoints = store
				logg.Info("Connected to checkpoint database")
			}
		}

		// 4. Initialize Credential Provider
		provider := auth.NewProvider(cfg.Auth)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		mgr.Register(datasets.NewFeature(provider, cfg.Graph, cfg.Auth, checkpoints, logg))
		mgr.Register(planner.NewFeature(provider, cfg.Graph, logg))
		mgr.Register(login.NewFeature(provider, cfg.Auth, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
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

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
