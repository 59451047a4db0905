// Command identityd runs the backend session proxy for the membership
// client: four privileged auth operations over HTTP plus the membership
// profile store.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-identity"
	"github.com/goliatone/go-identity/provider/firebase"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := identity.CreateProfilesTable(ctx, db); err != nil {
		return err
	}
	profiles := identity.NewProfilesRepository(db)

	provider, err := firebase.New(firebase.DefaultConfig(cfg.FirebaseAPIKey, cfg.FirebaseProjectID))
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}

	proxy := identity.NewSessionProxy(provider, profiles)

	app := fiber.New(fiber.Config{
		AppName:               "identityd",
		DisableStartupMessage: !cfg.Debug,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Membership identity API is running")
	})

	identity.RegisterAuthRoutes(app,
		identity.WithControllerProxy(proxy),
		identity.WithControllerDebug(cfg.Debug),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
