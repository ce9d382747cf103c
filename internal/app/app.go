// Package app wires configuration, database, routes, and the scheduler
// into a running portal server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fxedge-labs/ea-portal/internal/config"
	"github.com/fxedge-labs/ea-portal/internal/db"
	adminapi "github.com/fxedge-labs/ea-portal/internal/http/api/admin"
	"github.com/fxedge-labs/ea-portal/internal/http/api/front"
	"github.com/fxedge-labs/ea-portal/internal/metrics"
	"github.com/fxedge-labs/ea-portal/internal/scheduler"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal.
const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(cfg *config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}

// RunServer boots the portal HTTP server and blocks until ctx is cancelled
// or the server fails.
func RunServer(ctx context.Context, cfg *config.Config) error {
	conn, errOpen := db.Open(cfg.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errAdmin := EnsureAdmin(ctx, conn, cfg.Admin); errAdmin != nil {
		return errAdmin
	}

	engine := NewEngine(conn, cfg)

	if _, errStart := scheduler.Start(ctx, conn, cfg.Scheduler.ExpiryScan); errStart != nil {
		return errStart
	}

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("listen", cfg.Listen).Info("portal server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("app: shutdown: %w", errShutdown)
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serve: %w", errServe)
	}
}

// NewEngine builds the gin engine with middleware and all route groups.
func NewEngine(conn *gorm.DB, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Metrics {
		engine.Use(metrics.Middleware())
		engine.GET("/metrics", metrics.Handler())
	}

	adminapi.RegisterAdminRoutes(engine, conn, cfg.JWT)
	front.RegisterFrontRoutes(engine, conn, cfg)
	return engine
}
