// Package loop wires the pieces every surface shares: the store, the item
// catalog and the session hub.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/catch/internal/config"
	"github.com/tomz197/catch/internal/draw"
	"github.com/tomz197/catch/internal/loop/client"
	"github.com/tomz197/catch/internal/loop/server"
	"github.com/tomz197/catch/internal/object"
	"github.com/tomz197/catch/internal/store"
)

const defaultDBPath = "data/catch.db"

// Env holds the process-wide services of one surface.
type Env struct {
	Store   store.Store
	Catalog *object.Catalog
	Hub     *server.Server
	Logger  *log.Logger

	db     *store.SQLite
	cancel context.CancelFunc
	done   chan struct{}
}

// Setup opens the store at CATCH_DB_PATH, loads the catalog named by
// CATCH_CATALOG and starts the hub.
func Setup(ctx context.Context, logger *log.Logger) (*Env, error) {
	catalog, err := LoadCatalog(config.GetEnv("CATCH_CATALOG", ""))
	if err != nil {
		return nil, err
	}

	path := config.GetEnv("CATCH_DB_PATH", defaultDBPath)
	db, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", "path", path)

	st := store.NewCached(store.NewRetrying(db, store.DefaultRetryPolicy, logger), logger)
	return start(st, db, catalog, logger), nil
}

// NewEnv starts a hub over an existing store. Used by tests and by
// surfaces that bring their own store.
func NewEnv(st store.Store, catalog *object.Catalog, logger *log.Logger) *Env {
	if catalog == nil {
		catalog = object.DefaultCatalog()
	}
	return start(st, nil, catalog, logger)
}

func start(st store.Store, db *store.SQLite, catalog *object.Catalog, logger *log.Logger) *Env {
	hub := server.NewServer(st, server.Options{Logger: logger})
	ctx, cancel := context.WithCancel(context.Background())
	env := &Env{
		Store:   st,
		Catalog: catalog,
		Hub:     hub,
		Logger:  logger,
		db:      db,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		hub.Run(ctx)
		close(env.done)
	}()
	logger.Info("hub started")
	return env
}

// Close notifies connected players, waits up to timeout for them to leave,
// then stops the hub and closes the store.
func (e *Env) Close(timeout time.Duration) error {
	e.Hub.Shutdown(timeout)
	e.cancel()
	<-e.done
	e.Logger.Info("hub stopped")
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// LoadCatalog reads a YAML catalog file. An empty path yields the default
// catalog.
func LoadCatalog(path string) (*object.Catalog, error) {
	if path == "" {
		return object.DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	c, err := object.LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Run plays one local session on the given terminal streams. A valid card
// logs the player in at once.
func Run(r *bufio.Reader, w io.Writer, env *Env, card string) error {
	c := client.NewClient(env.Hub, r, w, client.ClientOptions{
		TermSizeFunc: draw.DefaultTermSizeFunc,
		Username:     "local",
		Card:         card,
		Catalog:      env.Catalog,
		Logger:       env.Logger,
	})
	return c.Run()
}
