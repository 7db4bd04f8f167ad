package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/tomz197/catch/internal/config"
	"github.com/tomz197/catch/internal/loop"
	loopconfig "github.com/tomz197/catch/internal/loop/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the game, so logs go to a file.
	logger := config.NewLogger("game")
	logPath := config.GetEnv("CATCH_LOG_FILE", "data/game.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create log dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	env, err := loop.Setup(ctx, logger)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := env.Close(loopconfig.ExitSaveTimeout); err != nil {
			logger.Error("close store", "err", err)
		}
	}()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	if err := loop.Run(reader, os.Stdout, env, config.GetEnv("CATCH_CARD", "")); err != nil {
		logger.Error("game error", "err", err)
	}
}
