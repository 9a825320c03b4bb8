package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/igsync/internal/repositories"
	"github.com/desertthunder/igsync/internal/services"
	"github.com/desertthunder/igsync/internal/shared"
	"github.com/desertthunder/igsync/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	states *services.StateStore
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	States *services.StateStore
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.States == nil {
		opts.States = services.NewStateStore(0)
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		states: opts.States,
	}
}

// openEngine opens the database and wires the account engine. The returned
// cleanup closes the connection and must be called by the command action.
func (r *Runner) openEngine() (*tasks.AccountEngine, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	graph, err := services.NewGraphService(r.config.Instagram, r.logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	engine := tasks.NewAccountEngine(
		graph, graph, graph,
		r.states,
		repositories.NewAccountRepository(db),
		repositories.NewMediaRepository(db),
		r.logger,
	)

	return engine, db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// drainProgress prints progress messages until the channel closes.
func (r *Runner) drainProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		r.logger.Info(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
	}
}
