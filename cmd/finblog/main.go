package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/finblog-client/internal/app"
	"github.com/angelmondragon/finblog-client/internal/logbuffer"
	"github.com/angelmondragon/finblog-client/internal/posts"
	"github.com/angelmondragon/finblog-client/internal/search"
	"github.com/angelmondragon/finblog-client/pkg/config"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/storage"
)

const usage = `usage: finblog <command> [args]

commands:
  posts [page]               list published posts
  search <query>             search posts
  login <email> <password>   sign in and remember the session
  me                         show the signed-in user
  logout                     sign out
  export-logs <file>         write the client log buffer as JSON
  watch                      keep stores reconciled until interrupted`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	logg := logger.New(logger.Options{ServiceName: "finblog", Output: os.Stderr})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, *cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage", err)
		}
	}()

	buffer := logbuffer.New(store, cfg.App.LogBufferCap)
	if err := buffer.Load(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "log buffer not restored")
	}
	defer func() {
		if err := buffer.Close(context.Background()); err != nil {
			logg.Error(context.Background(), "error persisting log buffer", err)
		}
	}()
	logg = logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
		Sinks:       []io.Writer{buffer},
	})

	searchResults := make(chan search.Result[posts.Post], 1)
	application, err := app.New(app.Params{
		Config:     cfg,
		Logger:     logg,
		Storage:    store,
		Registerer: prometheus.DefaultRegisterer,
		OnSearch: func(r search.Result[posts.Post]) {
			select {
			case searchResults <- r:
			default:
			}
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to build app", err)
		os.Exit(1)
	}
	defer application.Close()

	if _, err := application.Boot(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "session not restored")
	}

	cmd := &command{
		app:     application,
		logs:    buffer,
		logg:    logg,
		out:     os.Stdout,
		results: searchResults,
	}
	if err := cmd.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logg.Error(ctx, "command failed", err)
		_ = buffer.Close(context.Background())
		os.Exit(1)
	}
}
