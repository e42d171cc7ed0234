package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docgrid/docgrid/editor"
	"github.com/docgrid/docgrid/hub"
	"github.com/docgrid/docgrid/srv"
	"github.com/docgrid/docgrid/store"
	"github.com/docgrid/docgrid/store/mem"
	"github.com/docgrid/docgrid/store/mongo"
)

func main() {
	_ = godotenv.Load()
	addr := getEnv("DOCGRID_ADDR", ":4001")
	mongoURL := getEnv("DOCGRID_MONGO_URL", "mongodb://localhost:27017")
	database := getEnv("DOCGRID_DB", "docgrid")
	backend := getEnv("DOCGRID_STORE", "mongo")
	level := getEnv("DOCGRID_LOG", "info")

	if err := setupLogging(level); err != nil {
		slog.Error("could not init logging", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, backend, mongoURL, database)
	if err != nil {
		slog.Error("could not init store", "backend", backend, "err", err)
		return
	}

	h := hub.NewHub(slog.Default())
	ed := editor.NewService(st, slog.Default())
	server := srv.NewServer(st, ed, h, database, slog.Default())

	httpServer := &http.Server{Addr: addr, Handler: server}

	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("listening", "addr", addr, "database", database, "store", backend)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			term <- syscall.SIGTERM
		}
	}()

	<-term
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown was not clean", "err", err)
	}
	if closer, ok := st.(interface{ Close(context.Context) error }); ok {
		_ = closer.Close(shutdownCtx)
	}
}

func openStore(ctx context.Context, backend, mongoURL, database string) (store.Store, error) {
	switch backend {
	case "memory":
		return mem.NewStore(), nil
	default:
		return mongo.NewStore(ctx, mongoURL, database)
	}
}

func setupLogging(level string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	return err
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
