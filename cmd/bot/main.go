// Command bot watches WebUntis timetables and sends a Slack direct message
// when a lesson gets cancelled.
//
// Usage:
//
//	untis-bot serve     # slash command endpoint + scheduled cycles
//	untis-bot cycle     # run one cycle now and exit
//	untis-bot migrate   # apply database migrations and exit
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/config"
	"github.com/diegoclair/untis-cancellation-bot/internal/database"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/service"
	"github.com/diegoclair/untis-cancellation-bot/internal/handlers"
	"github.com/diegoclair/untis-cancellation-bot/internal/logger"
	"github.com/diegoclair/untis-cancellation-bot/internal/scheduler"
	"github.com/diegoclair/untis-cancellation-bot/internal/untis"
	"github.com/diegoclair/untis-cancellation-bot/migrator/sqlite"
)

const shutdownTimeout = 10 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "untis-bot",
		Short:         "Slack notifications for cancelled WebUntis lessons",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(cycleCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds everything a command needs once config, logging and the
// database are up.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *database.DB
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Error("failed to close database", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) services() *service.Instance {
	untisClient := untis.New(untis.Options{
		ClientName:        a.cfg.UntisClientName,
		SchoolSearchURL:   a.cfg.UntisSchoolSearchURL,
		RequestsPerMinute: a.cfg.UntisRequestsPerMinute,
		Timeout:           a.cfg.FetchTimeout,
		Location:          a.cfg.Location(),
	}, a.log.Named("untis"))

	slackClient := slack.New(a.cfg.SlackBotToken)

	return service.NewInstance(
		database.NewInstance(a.db),
		untisClient,
		untisClient,
		slackClient,
		a.log.Named("service"),
		service.Options{
			Workers:      a.cfg.CycleWorkers,
			FetchTimeout: a.cfg.FetchTimeout,
		},
	)
}

// run loads config, opens and migrates the database and hands over to fn.
// Any failure before fn runs is fatal for the command.
func run(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: db}
	defer a.close()

	log.Info("running migrations", zap.String("path", cfg.DatabasePath))
	if err := sqlite.Migrate(db.DB()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return fn(ctx, a)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the slash command endpoint and run scheduled cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	if a.cfg.SlackSigningSecret == "" {
		return errors.New("SLACK_SIGNING_SECRET is required to serve")
	}

	inst := a.services()

	sched, err := scheduler.New(inst.Cancellation, a.cfg.CycleSchedule, a.cfg.Location(), a.log.Named("scheduler"))
	if err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()

	handler := handlers.New(inst.Registration, a.cfg.SlackSigningSecret, a.log.Named("slack"), nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("port", a.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		a.log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown failed", zap.Error(err))
	}

	return nil
}

func cycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Check every registered user once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				result, err := a.services().Cancellation.RunCycle(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "users=%d notified=%d failed=%d\n", result.Users, result.Notified, result.Failed)
				return nil
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, a *app) error {
				a.log.Info("migrations completed")
				return nil
			})
		},
	}
}
