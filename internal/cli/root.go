package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schnell18/titra/internal/config"
	"github.com/schnell18/titra/internal/gateway"
	"github.com/schnell18/titra/internal/repository/sqlite"
	"github.com/schnell18/titra/internal/rules"
	"github.com/schnell18/titra/internal/services"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	config *config.Config
	logger *slog.Logger
}

// NewRootCommand creates the root cobra command with the serve subcommand
func NewRootCommand(cfg *config.Config, logger *slog.Logger) *RootCommand {
	root := &RootCommand{
		config: cfg,
		logger: logger,
	}

	root.cmd = &cobra.Command{
		Use:   "titra",
		Short: "A time tracking server with a REST API",
		Long: `titra is a time tracking server for projects and teams.

It stores projects, tasks and time entries, serves daily/total/working-hours
reports, maintains live team views, and bridges to siwapp invoicing and wekan
kanban boards.

CONFIGURATION:
  Configuration follows this priority order: environment variables > defaults

  Database Configuration:
    TITRA_DB_DIR               Database directory (default: ~/.titra)
    TITRA_DB_FILENAME          Database filename (default: titra.db)

  Server Configuration:
    TITRA_HOST                 Listen host (default: 0.0.0.0)
    TITRA_PORT                 Listen port (default: 3000)
    TITRA_SHUTDOWN_TIMEOUT     Graceful shutdown timeout (default: 10s)

  Rules Configuration:
    TITRA_RULES_TIMEOUT        Rule hook evaluation timeout (default: 1s)
    TITRA_RULES_MAX_HOURS      Max hours per time entry, 0 disables (default: 0)

  Logging:
    LOG_LEVEL                  debug, info, warn, error (default: info)`,
		SilenceUsage: true,
	}

	root.cmd.AddCommand(root.newServeCommand())
	return root
}

// Execute runs the root command.
func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

func (r *RootCommand) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.serve(cmd.Context())
		},
	}
}

func (r *RootCommand) serve(ctx context.Context) error {
	if err := os.MkdirAll(r.config.Database.Dir, 0o755); err != nil {
		return err
	}

	repo, err := sqlite.New(r.config.GetDatabasePath())
	if err != nil {
		return err
	}
	defer repo.Close()

	var rule rules.Rule
	if max := r.config.Rules.MaxHoursPerCard; max > 0 {
		rule = rules.MaxHoursPerEntry(max)
	}
	engine := rules.NewEngine(rule, r.config.Rules.Timeout)

	timecards := services.NewTimecardService(repo, engine, nil, nil)
	projects := services.NewProjectService(repo)
	users := services.NewUserService(repo)
	reports := services.NewReportService(repo)

	server := &http.Server{
		Addr:    r.config.GetListenAddr(),
		Handler: gateway.NewServer(timecards, projects, users, reports, r.logger),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
