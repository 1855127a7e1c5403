package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/familynest/admin-backend/internal/api"
	"github.com/familynest/admin-backend/internal/auth"
	"github.com/familynest/admin-backend/internal/config"
	"github.com/familynest/admin-backend/internal/database"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer db.Close()
	log.Println("Successfully connected to the database")

	authSvc := auth.New(db, cfg.JWTSecret, cfg.JWTExpiry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := authSvc.EnsureDefaultAdmin(ctx); err != nil {
		log.Fatalf("FATAL: admin bootstrap failed: %v", err)
	}

	// OpenTelemetry tracing (optional). Must happen before Routes so the
	// otelgin middleware ends up in every route's handler chain.
	shutdown, tracing := api.SetupOTelFromEnv()
	if tracing {
		defer shutdown(context.Background())
	}

	server := api.New(db, authSvc, cfg)
	server.Tracing = tracing
	router := api.Routes(server)

	if cfg.SweepCron != "" {
		sweeper, err := api.StartNotificationSweeper(db, cfg.SweepCron)
		if err != nil {
			log.Fatalf("FATAL: invalid NOTIFICATION_SWEEP_CRON %q: %v", cfg.SweepCron, err)
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("FamilyNest Admin API running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: server error: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Println("signal received, shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
