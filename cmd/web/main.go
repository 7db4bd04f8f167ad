package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomz197/catch/internal/config"
	"github.com/tomz197/catch/internal/loop"
	"github.com/tomz197/catch/internal/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage []byte

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger("web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	shutdownWait := config.GetEnvDuration("WEB_SHUTDOWN_WAIT", 10*time.Second)

	setupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	env, err := loop.Setup(setupCtx, logger)
	cancel()
	if err != nil {
		logger.Fatal("setup failed", "err", err)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           web.NewHandler(env.Hub, env.Catalog, logger, htmlPage),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting web server", "url", "http://"+srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	// Browsers get a shutdown message and leave; their sessions save on the way out.
	if err := env.Close(shutdownWait); err != nil {
		logger.Error("close store", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}
