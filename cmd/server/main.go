package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/example/tintura/internal/blob"
	"github.com/example/tintura/internal/catalog"
	"github.com/example/tintura/internal/config"
	"github.com/example/tintura/internal/database"
	"github.com/example/tintura/internal/editor"
	"github.com/example/tintura/internal/handlers"
	"github.com/example/tintura/internal/imaging"
	"github.com/example/tintura/internal/passcode"
	"github.com/example/tintura/internal/platform/logger"
	"github.com/example/tintura/internal/routes"
	"github.com/example/tintura/internal/services"
	"github.com/example/tintura/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("failed to build logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.Connect(cfg.DatabaseURL, cfg.AutoMigrate, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	mode, err := blob.ResolveMode(cfg.StorageMode, cfg.StorageEmulatorHost)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}
	blobs, err := blob.NewGCSStore(ctx, blob.Config{
		Mode:          mode,
		Bucket:        cfg.GCSBucket,
		CDNDomain:     cfg.GCSCDNDomain,
		EmulatorHost:  cfg.StorageEmulatorHost,
		PublicBaseURL: cfg.StoragePublicBaseURL,
		Credentials:   cfg.GCSCredentials,
	}, log)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}
	defer blobs.Close()

	products := store.NewProductStore(db)
	engine := catalog.NewEngine(products, log)

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, log)
	var dispatchers []passcode.Dispatcher
	if mail, err := services.NewSendGridService(cfg.SendGridAPIKey, cfg.SendGridFromEmail, log); err != nil {
		log.Warn("email code delivery disabled", "error", err)
	} else {
		dispatchers = append(dispatchers, mail)
	}
	if telegram.Configured() {
		dispatchers = append(dispatchers, telegram)
	}

	codes := passcode.NewService(passcode.NewGormRepository(db), passcode.Options{
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
		Address:    cfg.AdminEmail,
	}, log, dispatchers...)
	gate := passcode.NewGate(cfg.AdminEmail, codes, codes, log)

	workspace := editor.NewWorkspace(editor.Deps{
		Store:     products,
		Blobs:     blobs,
		Catalog:   engine,
		Options:   engine,
		Normalize: imaging.Normalize,
		Log:       log,
	})

	if err := gate.Start(ctx); err != nil {
		log.Warn("admin session reset failed", "error", err)
	}
	if _, err := engine.LoadAll(ctx); err != nil {
		log.Warn("initial catalog load failed", "error", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Tintura Backend",
		BodyLimit:    25 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, routes.Handlers{
		Storefront: handlers.NewStorefrontHandler(engine),
		Auth:       handlers.NewAuthHandler(gate, codes, workspace),
		Admin:      handlers.NewAdminHandler(engine, workspace, telegram, log),
		Sessions:   codes,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "port", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			return fmt.Errorf("fiber.Listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	return g.Wait()
}
