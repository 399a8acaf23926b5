package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	cfnats "github.com/Strob0t/todolist/internal/adapter/nats"
	"github.com/Strob0t/todolist/internal/config"
	"github.com/Strob0t/todolist/internal/logger"
	"github.com/Strob0t/todolist/internal/port/messagequeue"
	"github.com/Strob0t/todolist/internal/service"
)

// runAdmin dispatches admin subcommands.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "clear-all":
		return runAdminClearAll(args[1:])
	case "seed-tags":
		return runAdminSeedTags(args[1:])
	case "migrate-status":
		return runAdminMigrateStatus(args[1:])
	case "migrate-down":
		return runAdminMigrateDown(args[1:])
	case "watch":
		return runAdminWatch(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: todolist admin <command> [options]

Commands:
  clear-all        Delete every todo and tag
  seed-tags        Create the default tags when none exist
  migrate-status   Show applied and pending schema migrations
  migrate-down     Roll back the most recent migration
  watch            Print change events from NATS as they arrive
  help             Show this help message

Every command accepts --config <path> (default %s).

Examples:
  todolist admin clear-all --yes
  todolist admin seed-tags
  todolist admin watch --subject 'todos.>'
`, config.DefaultConfigFile)
}

// adminFlags returns a flag set carrying the shared --config flag.
func adminFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", config.DefaultConfigFile, "path to YAML config file")
	return fs, path
}

func loadAdminConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Logging.Async = false
	log, _ := logger.New(cfg.Logging)
	slog.SetDefault(log)
	return cfg, nil
}

func runAdminClearAll(args []string) error {
	fs, path := adminFlags("clear-all")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*yes {
		ok, err := confirm("This deletes every todo and tag. Type 'yes' to continue: ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	cfg, err := loadAdminConfig(*path)
	if err != nil {
		return err
	}
	ctx := context.Background()
	db, err := openBackend(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer db.close()

	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		q, err := cfnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = q.Close() }()
		queue = q
	}

	notifier := service.NewNotifier(nil, queue, nil, nil)
	if err := service.NewAdminService(db.store, notifier, nil).ClearAll(ctx); err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	fmt.Fprintln(os.Stderr, "All data cleared.")
	return nil
}

func runAdminSeedTags(args []string) error {
	fs, path := adminFlags("seed-tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadAdminConfig(*path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openBackend(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer db.close()

	n, err := service.NewAdminService(db.store, nil, nil).SeedTags(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(os.Stderr, "Tags already exist, nothing seeded.")
		return nil
	}
	fmt.Fprintf(os.Stderr, "Seeded %d tags: %s\n", n, strings.Join(service.DefaultTags, ", "))
	return nil
}

func runAdminMigrateStatus(args []string) error {
	fs, path := adminFlags("migrate-status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadAdminConfig(*path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openBackend(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer db.close()

	p, closeMigrator, err := db.migrator()
	if err != nil {
		return err
	}
	defer func() { _ = closeMigrator() }()

	statuses, err := p.Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tFILE\tSTATE\tAPPLIED_AT")
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.Source.Path, s.State, applied)
	}
	return w.Flush()
}

func runAdminMigrateDown(args []string) error {
	fs, path := adminFlags("migrate-down")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*yes {
		ok, err := confirm("Rolling back drops data held by the last migration. Type 'yes' to continue: ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	cfg, err := loadAdminConfig(*path)
	if err != nil {
		return err
	}
	ctx := context.Background()
	db, err := openBackend(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer db.close()

	p, closeMigrator, err := db.migrator()
	if err != nil {
		return err
	}
	defer func() { _ = closeMigrator() }()

	res, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Rolled back %s\n", res.Source.Path)
	return nil
}

func runAdminWatch(args []string) error {
	fs, path := adminFlags("watch")
	subject := fs.String("subject", ">", "subject filter, e.g. 'todos.>'")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadAdminConfig(*path)
	if err != nil {
		return err
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q, err := cfnats.Connect(ctx, cfg.NATS.URL, cfg.NATS.Stream)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = q.Close() }()

	enc := json.NewEncoder(os.Stdout)
	cancel, err := q.Subscribe(ctx, *subject, func(_ context.Context, subj string, data []byte) error {
		return enc.Encode(struct {
			Subject string          `json:"subject"`
			Payload json.RawMessage `json:"payload"`
		}{subj, data})
	})
	if err != nil {
		return err
	}
	defer cancel()

	fmt.Fprintf(os.Stderr, "Watching %q on stream %s, Ctrl-C to stop.\n", *subject, cfg.NATS.Stream)
	<-ctx.Done()
	return nil
}

// confirm asks on the terminal and reports whether the answer was "yes".
// Without a terminal on stdin it refuses; pass --yes instead.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(syscall.Stdin)) { //nolint:unconvert // int conversion needed on some platforms
		return false, errors.New("stdin is not a terminal, pass --yes to confirm")
	}
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read answer: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes"), nil
}
