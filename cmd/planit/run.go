package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/planit/internal/api"
	"github.com/nhle/planit/internal/app"
	"github.com/nhle/planit/internal/credential"
	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/logging"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/schedule"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/store"
)

const shutdownTimeout = 10 * time.Second

// env carries what every subcommand needs.
type env struct {
	cfg     *model.AppConfig
	cfgPath string
	logger  *log.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// services bundles the opened store and the services on top of it.
type services struct {
	store  store.Store
	tasks  *service.TaskService
	groups *service.GroupService
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("planit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", model.DefaultConfigPath(), "Path to the YAML config file")
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(fs, stderr)
		return errors.New("missing command")
	}
	if rest[0] == "help" {
		printUsage(fs, stdout)
		return nil
	}

	cfg, err := model.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	e := &env{
		cfg:     cfg,
		cfgPath: *cfgPath,
		logger:  logging.New(stderr, logging.Options{Level: cfg.Log.Level, Prefix: "planit", Timestamp: true}),
		stdout:  stdout,
		stderr:  stderr,
	}

	switch rest[0] {
	case "serve":
		return serveCommand(ctx, e)
	case "tui":
		return tuiCommand(ctx, e)
	case "list":
		return listCommand(ctx, e, rest[1:])
	case "today":
		return todayCommand(ctx, e)
	case "refresh":
		return refreshCommand(ctx, e)
	case "token":
		return tokenCommand(e, rest[1:])
	default:
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", rest[0])
	}
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Usage: planit [-config path] <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve              Start the REST server and the nightly refresh")
	fmt.Fprintln(w, "  tui                Open the terminal UI")
	fmt.Fprintln(w, "  list [-done]       Print active tasks")
	fmt.Fprintln(w, "  today              Print the tasks occurring today")
	fmt.Fprintln(w, "  refresh            Recompute the next occurrence of every task")
	fmt.Fprintln(w, "  token set <value>  Store the API bearer token in the keyring")
	fmt.Fprintln(w, "  token clear        Remove the stored API bearer token")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func openServices(e *env, logger *log.Logger) (*services, error) {
	if e.cfg.Storage.Backend == model.BackendSQLite && !strings.Contains(e.cfg.Storage.DBPath, ":memory:") {
		dir := filepath.Dir(e.cfg.Storage.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
		}
	}
	st, err := store.Open(e.cfg.Storage)
	if err != nil {
		return nil, err
	}
	return &services{
		store:  st,
		tasks:  service.NewTaskService(st, service.SystemClock, logger),
		groups: service.NewGroupService(st, logger),
	}, nil
}

func serveCommand(ctx context.Context, e *env) error {
	svc, err := openServices(e, e.logger)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	token, err := credential.NewVault(model.DefaultDataDir()).APIToken(e.cfg.Server.Token)
	if err != nil {
		e.logger.Warn("api token unavailable, authentication disabled", "err", err)
		token = ""
	}

	refresher := schedule.NewRefresher(svc.tasks, time.Local, e.logger.WithPrefix("scheduler"))
	if _, err := refresher.ScheduleDaily(e.cfg.Scheduler.RefreshAt); err != nil {
		return err
	}
	if _, err := refresher.RunNow(ctx); err != nil {
		e.logger.Error("initial refresh", "err", err)
	}
	refresher.Start()
	defer refresher.Stop()

	srv := api.NewServer(svc.tasks, svc.groups, api.Options{
		CORSOrigin: e.cfg.Server.CORSOrigin,
		Token:      token,
		Logger:     e.logger.WithPrefix("api"),
	})
	httpServer := &http.Server{
		Addr:              e.cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("server started", "addr", e.cfg.Server.Addr, "auth", token != "", "next_refresh", refresher.Next())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func tuiCommand(ctx context.Context, e *env) error {
	logPath := filepath.Join(model.DefaultDataDir(), "planit.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	defer logFile.Close()
	logger := logging.New(logFile, logging.Options{Level: e.cfg.Log.Level, Timestamp: true})

	svc, err := openServices(e, logger)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	root := app.New(app.Options{
		Tasks:      svc.tasks,
		Groups:     svc.groups,
		Config:     e.cfg,
		ConfigPath: e.cfgPath,
		Logger:     logger,
	})
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running tui: %w", err)
	}
	fmt.Fprintln(e.stdout, i18n.New(e.cfg.Display.Language).T(i18n.Goodbye))
	return nil
}

func listCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("planit list", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	showDone := fs.Bool("done", false, "Include finished one-off tasks")
	sortBy := fs.String("sort", string(model.SortByDeadline), "Sort field (created_at|deadline|priority|title)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := openServices(e, e.logger)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	filter := store.TaskFilter{SortBy: model.ParseSortField(*sortBy)}
	if !*showDone {
		open := false
		filter.Done = &open
	}
	tasks, err := svc.tasks.List(ctx, filter)
	if err != nil {
		return err
	}
	return printTasks(ctx, e, svc, tasks)
}

func todayCommand(ctx context.Context, e *env) error {
	svc, err := openServices(e, e.logger)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	tasks, err := svc.tasks.TasksOn(ctx, svc.tasks.Today())
	if err != nil {
		return err
	}
	return printTasks(ctx, e, svc, tasks)
}

func printTasks(ctx context.Context, e *env, svc *services, tasks []model.Task) error {
	cat := i18n.New(e.cfg.Display.Language)
	if len(tasks) == 0 {
		fmt.Fprintln(e.stdout, cat.T(i18n.NoTasks))
		return nil
	}
	names, err := svc.groups.Names(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, renderTable(tasks, names, svc.tasks.Today(), cat))
	return nil
}

func refreshCommand(ctx context.Context, e *env) error {
	svc, err := openServices(e, e.logger)
	if err != nil {
		return err
	}
	defer svc.store.Close()

	n, err := schedule.NewRefresher(svc.tasks, time.Local, e.logger).RunNow(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "refreshed %d tasks\n", n)
	return nil
}

func tokenCommand(e *env, args []string) error {
	vault := credential.NewVault(model.DefaultDataDir())
	switch {
	case len(args) == 2 && args[0] == "set":
		if strings.TrimSpace(args[1]) == "" {
			return errors.New("token must not be empty")
		}
		if err := vault.Set(credential.APITokenKey, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, "api token stored")
		return nil
	case len(args) == 1 && args[0] == "clear":
		if err := vault.Delete(credential.APITokenKey); err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, "api token removed")
		return nil
	default:
		return errors.New("usage: planit token set <value> | planit token clear")
	}
}
