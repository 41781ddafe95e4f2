// Package cli implements the autograder command line interface.
//
// Commands are built with Cobra around an [App], which holds the loaded
// configuration and the collaborators each command needs. Tests construct an
// App directly and inject fakes; [Execute] builds the production App.
//
// Running the binary with no subcommand runs the full grading workflow,
// the same as "autograder run".
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"autograder/internal/artifact"
	"autograder/internal/config"
	"autograder/internal/grader"
	"autograder/internal/logging"
	"autograder/internal/output"
	"autograder/internal/workflow"
)

// ArtifactStore is the artifact writer plus read-back of the saved result.
//
// The [artifact.Writer] type implements this interface.
type ArtifactStore interface {
	workflow.ArtifactWriter
	ReadResult() (grader.RunResult, error)
}

// App holds the dependencies shared by all commands.
//
// Client and Artifacts may be left nil; they are then built from Config
// when a command first needs them, after flags have been applied.
type App struct {
	Config    *config.Config
	Printer   output.Printer
	Logger    *zap.Logger
	Client    workflow.Client
	Artifacts ArtifactStore

	verbose bool
	// verboseLogger is the logger built for --verbose, synced when the
	// command finishes.
	verboseLogger *zap.Logger
}

// NewApp creates an [App] from a loaded configuration.
func NewApp(cfg *config.Config, printer output.Printer, logger *zap.Logger) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		Config:  cfg,
		Printer: printer,
		Logger:  logger,
	}
}

// ExecuteResult is the outcome of running the root command.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "autograder",
		Short: "Register, schedule and collect results from the ECE 461 autograder",
		Long: `Drive the remote autograder service for this team:
  1. register      - Declare the team and repository
  2. schedule      - Start a grading run
  3. last-run      - Save the latest result to autograder_log.txt
  4. download-log  - Save that run's log to autograder_run_log.txt

With no subcommand the full workflow runs. The access token is read from a
.env file (GITHUB_TOKEN) next to the executable unless --env-file is given.
Under "go run" the executable lives in a temporary build directory, so pass
--env-file .env there.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.applyFlags()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runWorkflow(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.Config.Credentials.EnvFile, "env-file", app.Config.Credentials.EnvFile, "path to the .env credentials file (default: next to the executable)")
	flags.StringVar(&app.Config.Output.Dir, "out-dir", app.Config.Output.Dir, "directory for autograder_log.txt and autograder_run_log.txt (default: current directory)")
	flags.StringVar(&app.Config.Service.BaseURL, "base-url", app.Config.Service.BaseURL, "autograder service URL")
	flags.DurationVar(&app.Config.Service.Timeout, "timeout", app.Config.Service.Timeout, "per-request timeout, 0 for none")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "log requests and timings to stderr")

	rootCmd.AddCommand(
		newRunCommand(app),
		newRegisterCommand(app),
		newScheduleCommand(app),
		newLastRunCommand(app),
		newDownloadLogCommand(app),
		newBestRunCommand(app),
		newShowCommand(app),
	)

	return rootCmd
}

// RunWithApp executes the root command for app with the given arguments.
func RunWithApp(ctx context.Context, app *App, args []string) ExecuteResult {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	defer app.syncVerboseLogger()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{ExitCode: 0}
}

// RunWithConfig builds the production [App] for cfg and executes the
// command line in os.Args.
func RunWithConfig(cfg *config.Config) ExecuteResult {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	defer func() { _ = logger.Sync() }()

	app := NewApp(cfg, output.NewPrinter(), logger)
	return RunWithApp(context.Background(), app, os.Args[1:])
}

// Execute loads configuration, runs the command line and exits the process
// with the resulting code.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	os.Exit(RunWithConfig(cfg).ExitCode)
}

func (app *App) applyFlags() error {
	if app.verbose {
		logger, err := logging.New("debug", app.Config.Log.Format)
		if err != nil {
			return err
		}
		app.Logger = logger
		app.verboseLogger = logger
	}
	return nil
}

func (app *App) syncVerboseLogger() {
	if app.verboseLogger != nil {
		_ = app.verboseLogger.Sync()
		app.verboseLogger = nil
	}
}

func (app *App) client() workflow.Client {
	if app.Client == nil {
		app.Client = grader.NewClient(app.Config.Service.BaseURL, app.Config.Service.Timeout, app.Logger)
	}
	return app.Client
}

func (app *App) artifacts() ArtifactStore {
	if app.Artifacts == nil {
		app.Artifacts = artifact.NewWriter(app.Config.Output.Dir, app.Config.Output.ResultFile, app.Config.Output.RunLogFile)
	}
	return app.Artifacts
}

func (app *App) newRunner() *workflow.Runner {
	return workflow.NewRunner(app.client(), app.artifacts(), app.Printer, app.Logger)
}

// loadCredentials checks for and reads the credentials file. It runs before
// any network call; a missing file ends the command with exit code 1.
func (app *App) loadCredentials() (*config.Credentials, error) {
	path, err := config.ResolveEnvFile(app.Config.Credentials.EnvFile)
	if err != nil {
		app.Printer.Error(err.Error())
		return nil, NewExitError(1)
	}
	app.Printer.Field("Script directory", filepath.Dir(path))
	app.Printer.Field("Env file path", path)

	creds, err := config.LoadCredentials(path, app.Config.Credentials.TokenVar)
	if err != nil {
		if errors.Is(err, config.ErrCredentialsMissing) {
			app.Printer.Error("No .env file found: ensure root directory contains a .env file")
		} else {
			app.Printer.Error(err.Error())
		}
		app.Logger.Error("credentials unavailable", zap.String("path", path), zap.Error(err))
		return nil, NewExitError(1)
	}

	if !creds.HasToken() {
		app.Logger.Warn("credentials file does not define the token variable",
			zap.String("path", path),
			zap.String("var", app.Config.Credentials.TokenVar),
		)
	}
	return creds, nil
}

// registration loads credentials and builds the registration payload.
func (app *App) registration() (grader.RegistrationRequest, error) {
	creds, err := app.loadCredentials()
	if err != nil {
		return grader.RegistrationRequest{}, err
	}
	return app.Config.RegistrationRequest(creds), nil
}

func (app *App) runWorkflow(ctx context.Context) error {
	reg, err := app.registration()
	if err != nil {
		return err
	}

	app.Printer.Header("Autograder run",
		fmt.Sprintf("Group: %d", reg.Group),
		fmt.Sprintf("Service: %s", app.Config.Service.BaseURL),
		"Steps: register → schedule → last-run → download-log",
	)

	start := time.Now()
	if err := app.newRunner().Run(ctx, reg); err != nil {
		// the runner has already printed the failing step and summary
		return NewExitError(1)
	}
	app.Logger.Debug("workflow finished", zap.Duration("duration", time.Since(start)))
	return nil
}

// fail reports a command failure and converts it to an exit code.
func (app *App) fail(err error) error {
	if workflow.IsResultError(err) {
		app.Printer.Error(fmt.Sprintf("unusable run result: %v", err))
	} else {
		app.Printer.Error(err.Error())
	}
	return NewExitError(1)
}
