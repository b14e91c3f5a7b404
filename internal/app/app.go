package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/b1naryth1ef/heracles/internal/config"
	"github.com/b1naryth1ef/heracles/internal/db"
	"github.com/b1naryth1ef/heracles/internal/http/api"
	"github.com/b1naryth1ef/heracles/internal/radiusd"
	"github.com/b1naryth1ef/heracles/internal/security"
)

const shutdownTimeout = 5 * time.Second

// RunServer opens the database, seeds the admin user, and serves the HTTP
// API (plus the RADIUS bridge when configured) until ctx is canceled.
func RunServer(ctx context.Context, cfg config.Config) error {
	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errBootstrap := Bootstrap(conn, cfg); errBootstrap != nil {
		return errBootstrap
	}

	// Without a configured secret, sessions only survive this process.
	if strings.TrimSpace(cfg.Session.Secret) == "" {
		secret, errSecret := security.GenerateTokenSecret()
		if errSecret != nil {
			return errSecret
		}
		cfg.Session.Secret = secret
		log.Warn("no session secret configured, sessions will not survive restarts")
	}

	router := api.NewRouter(conn, cfg)

	if cfg.Radius.Enabled() {
		radiusServer := radiusd.NewServer(conn, cfg.Radius)
		go func() {
			log.WithField("bind", cfg.Radius.Bind).Info("radius listener starting")
			if errServe := radiusServer.ListenAndServe(); errServe != nil {
				log.WithError(errServe).Error("radius listener failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if errShutdown := radiusServer.Shutdown(shutdownCtx); errShutdown != nil {
				log.WithError(errShutdown).Warn("radius shutdown failed")
			}
		}()
	}

	listener, cleanup, errListen := listen(cfg.Bind)
	if errListen != nil {
		return errListen
	}
	defer cleanup()

	server := &http.Server{Handler: router}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("bind", cfg.Bind).Info("listening")
		serveErr <- server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// listen binds either a TCP address or, with a unix:// prefix, a unix
// domain socket. The returned cleanup removes the socket file.
func listen(bind string) (net.Listener, func(), error) {
	if path, ok := strings.CutPrefix(bind, "unix://"); ok {
		// A stale socket from a previous run blocks the bind.
		_ = os.Remove(path)
		listener, err := net.Listen("unix", path)
		if err != nil {
			return nil, nil, err
		}
		return listener, func() {
			listener.Close()
			os.Remove(path)
		}, nil
	}

	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, nil, err
	}
	return listener, func() { listener.Close() }, nil
}
