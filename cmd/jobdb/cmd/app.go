package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/getajob/jobdb/internal/telem"

	"github.com/alecthomas/kingpin"
	"github.com/getsentry/sentry-go"
	kitlog "github.com/go-kit/kit/log"
	level "github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/oklog/run"
)

var logger kitlog.Logger

var (
	app = kingpin.New("jobdb", "Manage the job tracker database schema").Version(versionStanza())

	// Global flags
	debug               = app.Flag("debug", "Enable debug logging").Default("false").Bool()
	traceExporter       = app.Flag("trace-exporter", "Where to send spans (none, jaeger, stackdriver)").Default("none").Enum("none", "jaeger", "stackdriver")
	jaegerAgentEndpoint = app.Flag("jaeger-agent-endpoint", "Endpoint for Jaeger agent").Default("localhost:6831").String()
	stackdriverProject  = app.Flag("stackdriver-project", "GCP project for Stackdriver traces").Envar("GOOGLE_CLOUD_PROJECT").String()
	sentryDSN           = app.Flag("sentry-dsn", "Report failures to Sentry").Envar("SENTRY_DSN").String()
	pushgatewayURL      = app.Flag("pushgateway-url", "Push metrics to this Prometheus pushgateway on exit").Envar("PUSHGATEWAY_URL").String()

	// Database connection parameters. Anything left unset falls back to the libpq
	// environment variables (PGHOST, PGPORT, ...) and their defaults.
	databaseURL = app.Flag("database-url", "Postgres connection URL, overrides individual settings").Envar("DATABASE_URL").String()
	host        = app.Flag("host", "Postgres host").Envar("DB_HOST").String()
	port        = app.Flag("port", "Postgres port").Envar("DB_PORT").Uint16()
	database    = app.Flag("database", "Postgres database name").Envar("DB_NAME").String()
	user        = app.Flag("user", "Postgres user").Envar("DB_USER").String()
	password    = app.Flag("password", "Postgres password").Envar("DB_PASSWORD").String()
	schemaName  = app.Flag("schema", "Schema holding the job tracker tables").Envar("DB_SCHEMA").Default("public").String()

	migrate        = app.Command("migrate", "Apply pending migrations")
	migrateInstall = migrate.Flag("install", "Create baseline tables first, only required for a fresh database").Default("false").Bool()
	migrateVerify  = migrate.Flag("verify", "Verify the resulting schema once migrated").Default("false").Bool()

	status  = app.Command("status", "Print the state of each migration")
	version = app.Command("version", "Print the current schema version")

	verify     = app.Command("verify", "Compare the live schema against the expected layout")
	verifyDump = verify.Flag("dump", "Dump the inspected schema").Default("false").Bool()

	printSQL         = app.Command("print", "Print migrations as plain SQL")
	printTransaction = printSQL.Flag("transaction", "Wrap each migration in begin/commit").Default("true").Bool()
	printBaseline    = printSQL.Flag("baseline", "Include the baseline tables").Default("false").Bool()

	gooseCommand = app.Command("goose", "Pass a command through to goose")
	gooseName    = gooseCommand.Arg("command", "Command to pass to goose").Required().String()
	gooseArgs    = gooseCommand.Arg("args", "Arguments to goose command").Strings()
)

// Set by goreleaser
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func versionStanza() string {
	return fmt.Sprintf(
		"jobdb Version: %v\nGit SHA: %v\nGo Version: %v\nGo OS/Arch: %v/%v\nBuilt at: %v",
		Version, Commit, GoVersion, runtime.GOOS, runtime.GOARCH, Date,
	)
}

// SilentError should be returned when the command wants to skip all logging of the error
// it has encountered. It wraps no error content as we should never inspect it.
var SilentError = errors.New("silent error")

type UsageError struct {
	error
}

// newLogger builds the logfmt logger every command writes to. Debug records are only
// emitted when debug is set.
func newLogger(w io.Writer, debug bool) kitlog.Logger {
	filter := level.AllowInfo()
	if debug {
		filter = level.AllowDebug()
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	logger = level.NewFilter(logger, filter)

	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)
}

func Run() (err error) {
	// Environment files must load before parsing, as flags read their Envar defaults
	// during Parse. Only complain if someone asked for a specific file.
	if envFile, ok := os.LookupEnv("JOBDB_ENV_FILE"); ok {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to load %s: %v\n", envFile, err)
			return err
		}
	} else {
		_ = godotenv.Load()
	}

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger = newLogger(os.Stderr, *debug)

	// goose reports progress through the standard library logger
	stdlog.SetFlags(0)
	stdlog.SetOutput(kitlog.NewStdlibAdapter(logger))

	runID := uuid.New().String()
	logger = kitlog.With(logger, "run_id", runID)

	if *sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: *sentryDSN, Release: Version}); err != nil {
			return UsageError{fmt.Errorf("invalid sentry configuration: %w", err)}
		}

		sentry.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("run_id", runID)
			scope.SetTag("command", command)
			scope.SetTag("schema", *schemaName)
		})
	}

	// Setup an error handler to log and print usage
	defer func() {
		var usageErr UsageError
		switch {
		// Do nothing if no error
		case err == nil:
			return
		// Suppress silent errors
		case errors.Is(err, SilentError):
			return
		// If we're a usage error, unwrap it and print out usage before returning
		case errors.As(err, &usageErr):
			context, _ := app.ParseContext(os.Args[1:])
			app.UsageForContext(context)
			fmt.Fprintf(os.Stderr, "error: %s\n", usageErr.Error())

			err = usageErr.error
			return
		// Otherwise we probably want to log and report our error
		default:
			logError(logger, err)
			if *sentryDSN != "" {
				reportError(err)
			}
		}
	}()

	// Metrics are pushed whatever the outcome, failures being the interesting case
	defer func() {
		if *pushgatewayURL == "" {
			return
		}

		if pushErr := telem.Push(logger, *pushgatewayURL, "jobdb", runID); pushErr != nil {
			logger.Log("event", "metrics.push.error", "error", pushErr)
		}
	}()

	stopTracing, err := telem.StartTracing(logger, telem.TracingOptions{
		Exporter:            *traceExporter,
		ServiceName:         "jobdb",
		JaegerAgentEndpoint: *jaegerAgentEndpoint,
		StackdriverProject:  *stackdriverProject,
	})
	if err != nil {
		return UsageError{err}
	}

	defer stopTracing()

	// This is the root context for the application. Once terminated, everything we have
	// started should also finish.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stage our shutdown to first request termination, then cancel contexts if the
	// migration hasn't responded.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	shutdown := make(chan struct{})

	go func() {
		select {
		case <-sigc:
		case <-ctx.Done():
			return
		}
		close(shutdown)
		select {
		case <-time.After(30 * time.Second):
		case <-sigc:
		case <-ctx.Done():
		}
		cancel()
	}()

	// Rendering SQL needs no database, so handle it before we try connecting
	if command == printSQL.FullCommand() {
		return runPrint(os.Stdout, *printTransaction, *printBaseline)
	}

	db, cfg, err := buildDB(*databaseURL, connectionSettings{
		Host:     *host,
		Port:     *port,
		Database: *database,
		User:     *user,
		Password: *password,
		Schema:   *schemaName,
	})
	if err != nil {
		return UsageError{fmt.Errorf("invalid postgres configuration: %w", err)}
	}

	defer db.Close()

	logger.Log("event", "database_config",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
		"user", cfg.User,
		"schema", *schemaName,
	)

	var action func(context.Context) error
	switch command {
	case migrate.FullCommand():
		action = func(ctx context.Context) error {
			return runMigrate(ctx, logger, db, *schemaName, *migrateInstall, *migrateVerify)
		}
	case status.FullCommand():
		action = func(ctx context.Context) error {
			return runStatus(ctx, os.Stdout, db, *schemaName)
		}
	case version.FullCommand():
		action = func(ctx context.Context) error {
			return runVersion(ctx, os.Stdout, db, *schemaName)
		}
	case verify.FullCommand():
		action = func(ctx context.Context) error {
			return runVerify(ctx, logger, os.Stdout, db, *schemaName, *verifyDump)
		}
	case gooseCommand.FullCommand():
		action = func(ctx context.Context) error {
			return runGoose(ctx, logger, db, *schemaName, *gooseName, *gooseArgs...)
		}
	default:
		return UsageError{fmt.Errorf("unsupported command")}
	}

	var g run.Group

	{
		logger := kitlog.With(logger, "component", "shutdown_handler")

		ctx, cancel := context.WithCancel(ctx)

		// If we're asked to shutdown, we use the rungroup to trigger interrupts for every
		// component
		g.Add(
			func() error {
				select {
				case <-shutdown:
					logger.Log("event", "requesting_shutdown", "msg", "received signal, requesting shutdown")
					return fmt.Errorf("interrupted by signal")
				case <-ctx.Done():
				}

				return nil
			},
			func(error) {
				cancel() // end the shutdown select
			},
		)
	}

	{
		ctx, cancel := context.WithCancel(ctx)

		g.Add(
			func() error {
				return action(ctx)
			},
			func(error) {
				cancel() // rolls back any open migration transaction
			},
		)
	}

	return g.Run()
}
