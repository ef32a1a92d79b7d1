package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hazelfield/encore/internal/input"
	"github.com/hazelfield/encore/internal/repositories"
	"github.com/hazelfield/encore/internal/services"
	"github.com/hazelfield/encore/internal/shared"
	"github.com/hazelfield/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	setlists   services.SetlistProvider
	catalog    services.Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Setlists   services.SetlistProvider
	Catalog    services.Catalog
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	runner := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		setlists:   opts.Setlists,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	runner.applyHTTPClient(runner.setlists)
	runner.applyHTTPClient(runner.catalog)

	return runner
}

// applyHTTPClient pushes the runner's HTTP client into a service that accepts one.
func (r *Runner) applyHTTPClient(service any) {
	if service == nil {
		return
	}
	if s, ok := service.(interface{ SetHTTPClient(*http.Client) }); ok {
		s.SetHTTPClient(r.httpClient)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, eventsCommand, setlistCommand, spotifyCommand, runCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig resolves the effective configuration for a command, preferring
// the --config flag over the runner's preloaded config.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = r.configPath
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if config, err := shared.LoadConfig(configPath); err == nil {
				r.config = config
				r.configPath = configPath
				return config
			} else {
				r.logger.Warnf("failed to load config, using defaults %v", err)
			}
		}
	}

	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

// buildReader constructs the event reader from the effective config, applying
// a --input flag override for the CSV path.
func (r *Runner) buildReader(cmd *cli.Command, config *shared.Config) (input.Reader, error) {
	if path := cmd.String("input"); path != "" {
		config.Input.Source = "csv"
		config.Input.CSVPath = path
	}
	return input.NewReader(config)
}

// openDatabase opens the sqlite database and runs pending migrations.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// buildEngine assembles the pipeline engine. db may be nil, which disables
// the match cache and run history.
func (r *Runner) buildEngine(reader input.Reader, db *sql.DB, opts tasks.Options) (*tasks.PlaylistEngine, error) {
	if r.setlists == nil {
		return nil, fmt.Errorf("%w: setlist.fm api_key must be set in config.toml", shared.ErrMissingCredentials)
	}
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	var cache *repositories.MatchRepository
	var runs *repositories.RunRepository
	if db != nil {
		cache = repositories.NewMatchRepository(db)
		runs = repositories.NewRunRepository(db)
	}

	return tasks.NewPlaylistEngine(reader, r.setlists, r.catalog, cache, runs, opts, r.logger), nil
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
