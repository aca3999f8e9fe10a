// Command ewi records employee workload surveys and reports the workload index.
//
//	ewi serve
//	ewi create  -id 55555 -name "Bugs Bunny"
//	ewi submit  -id 55555 -job 0260 -category T -date 2024-01-05 -note "..." 4 12.5 2
//	ewi survey  -id 55555 -job 0260 -category P
//	ewi show    -id 55555 [-job 0260 -category T -from ... -to ...]
//	ewi index   -id 55555 -job 0260 -category T [-from ... -to ...]
//	ewi jobs
//	ewi export  -id 55555 -out bugs.txt
//	ewi import  -in bugs.txt [-force]
//
// Configuration comes from EWI_* environment variables and the YAML file named
// by EWI_CONFIG.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/ewi/internal/adapters/http/api"
	"github.com/okian/ewi/internal/adapters/http/swagger"
	"github.com/okian/ewi/internal/adapters/repository"
	app "github.com/okian/ewi/internal/app"
	"github.com/okian/ewi/internal/config"
	"github.com/okian/ewi/pkg/logger"
)

// HTTP server timeout constants.
const (
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// setup loads configuration, initializes logging and starts the service.
func setup(ctx context.Context, stderr io.Writer) (*config.Config, *app.Service, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitWithOptions(logger.Options{
		Writer: stderr,
		Format: logger.Format(cfg.LogFormat),
		Level:  cfg.LogLevel,
	}); err != nil {
		return nil, nil, err
	}
	log := logger.Get()

	store, err := repository.NewFileStore(cfg.DataDir,
		repository.WithExtension(cfg.FileExt),
		repository.WithAtomic(cfg.AtomicExport),
		repository.WithLogger(log.Named("store")),
	)
	if err != nil {
		return nil, nil, err
	}
	svc := app.New(
		app.WithStore(store),
		app.WithJobDir(cfg.JobDir),
		app.WithLogger(log.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

// serve runs the HTTP API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, svc *app.Service) error {
	log := logger.Get()
	var docs []swagger.Option
	if cfg.RedocBundle != "" {
		js, err := os.ReadFile(cfg.RedocBundle)
		if err != nil {
			return fmt.Errorf("redoc bundle: %w", err)
		}
		docs = append(docs, swagger.WithRedocBundle(js))
	}
	apiServer := api.NewServer(svc,
		api.WithLogger(log.Named("http")),
		api.WithRoutes(swagger.Routes(docs...)),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Handler(),
		ReadTimeout:       cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
