package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/imagenproxy/internal/config"
	"github.com/dmorgan81/imagenproxy/internal/inject"
	"github.com/dmorgan81/imagenproxy/internal/lambdaurl"
	"github.com/dmorgan81/imagenproxy/internal/log"
	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.New(os.Stderr, log.ParseLevel("")).Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, log.ParseLevel(cfg.LogLevel))
	ctx := log.NewContext(context.Background(), logger)
	injector := inject.Setup(ctx, cfg)

	if cfg.Lambda {
		adapter := do.MustInvoke[*lambdaurl.Adapter](injector)
		lambda.StartWithOptions(adapter.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return
	}

	if err := serve(ctx, cfg, do.MustInvoke[*gin.Engine](injector)); err != nil {
		logger.Error("server stopped", "error", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}
	_ = injector.Shutdown()
}

func serve(ctx context.Context, cfg config.Config, handler http.Handler) error {
	logger := log.FromContextOrDiscard(ctx)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
