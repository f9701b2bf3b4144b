package main

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/angelmondragon/finblog-client/internal/app"
	"github.com/angelmondragon/finblog-client/internal/logbuffer"
	"github.com/angelmondragon/finblog-client/internal/posts"
	"github.com/angelmondragon/finblog-client/internal/search"
	"github.com/angelmondragon/finblog-client/internal/session"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/pagination"
)

const searchTimeout = 10 * time.Second

var errUsage = stdErrors.New(usage)

type command struct {
	app     *app.App
	logs    *logbuffer.Buffer
	logg    *logger.Logger
	out     io.Writer
	results <-chan search.Result[posts.Post]
}

func (c *command) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "posts":
		return c.posts(ctx, args)
	case "search":
		return c.search(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "me":
		return c.me(ctx)
	case "logout":
		return c.report(ctx, c.app.Session.Logout(ctx))
	case "export-logs":
		return c.exportLogs(args)
	case "watch":
		return c.watch(ctx)
	default:
		return errUsage
	}
}

func (c *command) posts(ctx context.Context, args []string) error {
	params := pagination.Params{Page: 1}
	if len(args) > 0 {
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid page %q: %w", args[0], err)
		}
		params.Page = page
	}
	if _, err := c.app.Posts.Fetch(ctx, params); err != nil {
		return c.report(ctx, err)
	}
	return c.print(c.app.Posts.Snapshot())
}

func (c *command) search(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	c.app.Search.Input(args[0])
	select {
	case res := <-c.results:
		if res.Err != nil {
			return c.report(ctx, res.Err)
		}
		return c.print(res.Items)
	case <-time.After(searchTimeout):
		return fmt.Errorf("search timed out after %s", searchTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *command) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	user, err := c.app.Session.Login(ctx, session.Credentials{Email: args[0], Password: args[1]})
	if err != nil {
		return c.report(ctx, err)
	}
	return c.print(user)
}

func (c *command) me(ctx context.Context) error {
	if _, err := c.app.Session.CheckAuth(ctx); err != nil {
		return c.report(ctx, err)
	}
	return c.print(c.app.Session.Snapshot().Data.User)
}

func (c *command) exportLogs(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	if err := c.logs.Export(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export logs: %w", err)
	}
	return f.Close()
}

func (c *command) watch(ctx context.Context) error {
	c.logg.Info(c.logg.WithField(ctx, "interval", c.app.Reconcile.Interval().String()), "reconciling until interrupted")
	err := c.app.Run(ctx)
	if stdErrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// report presents err the way the UI would and returns it for the exit code.
func (c *command) report(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	decision := c.app.Report(ctx, err)
	if decision.Message != "" {
		fmt.Fprintln(os.Stderr, decision.Message)
	}
	for field, msg := range decision.Fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
	}
	return err
}

func (c *command) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
