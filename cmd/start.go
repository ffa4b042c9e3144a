package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facility-matcher/core/config"
	"facility-matcher/core/database"
	"facility-matcher/core/loader"
	"facility-matcher/core/logger"
	"facility-matcher/core/middleware/auth"
	"facility-matcher/core/middleware/rayid"
	"facility-matcher/core/session"
	"facility-matcher/core/storage"

	"facility-matcher/feature/integrity"
	"facility-matcher/feature/matching"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "facility-matcher/docs/swagger"
)

// @title Facility Matcher API
// @version 1.0
// @description Health facility name matching and reconciliation wizard.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the facility matcher server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// The registry database is optional; without it table sources are unavailable.
		var (
			db     *gorm.DB
			tables *database.TableCache
		)
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
			tables = database.NewTableCache(db, time.Duration(cfg.Database.CacheTTLSeconds)*time.Second)
			logg.Info("Connected to registry database", zap.String("driver", cfg.Database.Driver))
		}

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		bucketCtx, cancelBucket := context.WithTimeout(context.Background(), time.Duration(cfg.Storage.TimeoutSeconds)*time.Second)
		if err := storage.EnsureBucket(bucketCtx, store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Warn("Storage bucket unavailable", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		cancelBucket()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		sessions := session.NewStore(time.Duration(cfg.Matching.SessionTTLMinutes) * time.Minute)
		matchingFeature := matching.NewFeature(matching.NewService(sessions, store, cfg.Storage.Bucket, tables, cfg.Matching, logg))

		mgr := loader.NewManager(logg)
		mgr.Register(integrity.NewFeature(store, cfg.Storage.Bucket, logg, db))
		mgr.Register(matchingFeature)

		// RayID first so every log line can be traced.
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

		// Swagger stays public.
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(cfg.Server.ApiKey))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if cfg.Matching.SessionTTLMinutes > 0 {
			go matchingFeature.RunJanitor(ctx, time.Minute)
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

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
