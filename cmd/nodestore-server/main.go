// Command nodestore-server serves a node storage over the admin REST API.
//
// The storage is configured through NODESTORE_* environment variables named after the property
// keys, e.g. NODESTORE_STORAGE_TYPE=buffered-disk, NODESTORE_DISK_INDEX_FILE=/data/tree.idx,
// NODESTORE_DISK_PAGE_SIZE=4096. NODESTORE_LISTEN sets the address, localhost:8080 by default.
// Setting OKTA_DOMAIN and OKTA_CLIENT_ID enables bearer token verification.
package main

import (
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/factory"
	"github.com/sharedcode/nodestore/restapi"
)

func main() {
	nodestore.ConfigureLogging()
	if err := run(); err != nil {
		log.Error("nodestore-server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	props := nodestore.PropertiesFromEnv(os.LookupEnv)
	storage, err := factory.New().Create(ctx, props)
	if err != nil {
		return err
	}

	addr := os.Getenv("NODESTORE_LISTEN")
	if addr == "" {
		addr = "localhost:8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: restapi.Router(storage, restapi.Options{Okta: restapi.OktaOptionsFromEnv()}),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("serving node storage", "addr", addr, "type", props.String(nodestore.StorageTypeProperty, "memory"))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = srv.Shutdown(sctx)
		cancel()
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	// Dispose flushes, so it runs even if the server failed.
	return errors.Join(err, storage.Dispose(context.Background()))
}
