package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/grtshw/event-registration/events"
	_ "github.com/grtshw/event-registration/migrations"
	"github.com/grtshw/event-registration/notify"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}

	app := pocketbase.New()

	// Register migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: false,
	})

	// Register backup command for an immediate S3 backup
	app.RootCmd.AddCommand(&cobra.Command{
		Use:   "backup",
		Short: "Create a database backup now and upload it to S3",
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.Bootstrap(); err != nil {
				log.Fatalf("Failed to bootstrap: %v", err)
			}
			if err := runBackup(cmd.Context(), app, cfg.Backup); err != nil {
				log.Fatalf("Backup failed: %v", err)
			}
		},
	})

	// Register export-registrations command writing CSV to stdout
	app.RootCmd.AddCommand(&cobra.Command{
		Use:   "export-registrations",
		Short: "Export all event registrations as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Bootstrap(); err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			st, err := store.Open(cmd.Context(), cfg.StoreURL, cfg.MongoDatabase, app)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			n, err := runExport(cmd.Context(), st, os.Stdout)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Exported %d registrations\n", n)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OnServe hook - runs when the server starts
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// only the web server needs the session and admin settings
		if err := cfg.ValidateServer(); err != nil {
			return fmt.Errorf("invalid server config: %w", err)
		}

		configurePocketBaseSMTP(app, cfg.SMTP)

		st, err := store.Open(ctx, cfg.StoreURL, cfg.MongoDatabase, app)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		log.Printf("[Store] Using %s backend", storeKind(cfg.StoreURL))

		app.OnTerminate().BindFunc(func(te *core.TerminateEvent) error {
			cancel()
			closeCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := st.Close(closeCtx); err != nil {
				log.Printf("[Store] Failed to close: %v", err)
			}
			return te.Next()
		})

		if !cfg.AdminConfigured() {
			log.Println("[Admin] ADMIN_EMAIL/ADMIN_PASSWORD not set, admin login disabled")
		}

		srv := newServer(cfg, st,
			notify.NewSender(app, cfg.SMTP),
			events.NewAppPosters(app),
			utils.NewAppAuditor(app),
		)

		limiter := utils.NewRateLimiter(cfg.PublicRateLimit, time.Minute)
		go limiter.RunCleanup(ctx, 5*time.Minute)

		// Security headers middleware
		e.Router.BindFunc(securityHeadersMiddleware)

		srv.registerRoutes(e, limiter)

		// Start the backup scheduler
		go scheduleBackups(ctx, app, cfg.Backup)

		return e.Next()
	})

	// Start the application
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func storeKind(url string) string {
	switch url {
	case utils.StorePocketBase, "":
		return "pocketbase"
	case utils.StoreMemory:
		return "memory"
	}
	return "mongodb"
}

// securityHeadersMiddleware adds security headers to all responses
func securityHeadersMiddleware(e *core.RequestEvent) error {
	h := e.Response.Header()

	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")

	// HSTS - enforce HTTPS for 1 year, include subdomains
	h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

	// Content Security Policy - pages use the inline layout styles and /static scripts only
	h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'")

	// Referrer Policy - don't leak URLs to external sites
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

	// Permissions Policy - disable unused browser features
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")

	return e.Next()
}
