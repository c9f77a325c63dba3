package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/getajob/jobdb/internal/telem"
	"github.com/getajob/jobdb/pkg/migration"
	"github.com/getajob/jobdb/pkg/schema"

	"github.com/davecgh/go-spew/spew"
	"github.com/getsentry/sentry-go"
	kitlog "github.com/go-kit/kit/log"
	level "github.com/go-kit/kit/log/level"
	"go.opencensus.io/trace"
)

var gooseDir = gooseCommand.Flag("dir", "Migration source directory, only needed by commands that write files (create, fix)").String()

func runMigrate(ctx context.Context, logger kitlog.Logger, db *sql.DB, schemaName string, install, verify bool) error {
	ctx, span, logger := telem.StartSpan(telem.WithLogger(ctx, logger), "cmd/jobdb.migrate",
		trace.StringAttribute("schema", schemaName),
		trace.BoolAttribute("install", install),
	)
	defer span.End()

	if install {
		if err := migration.Install(ctx, logger, db, schemaName); err != nil {
			return err
		}
	}

	if err := migration.Migrate(ctx, logger, db, schemaName); err != nil {
		return err
	}

	if verify {
		return runVerify(ctx, logger, logWriter{logger}, db, schemaName, false)
	}

	return nil
}

func runStatus(ctx context.Context, w io.Writer, db *sql.DB, schemaName string) error {
	statuses, err := migration.Status(ctx, db, schemaName)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED AT")
	for _, status := range statuses {
		appliedAt := "pending"
		if status.Applied && status.AppliedAt != nil {
			appliedAt = status.AppliedAt.UTC().Format(time.RFC3339)
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\n", status.Version, status.Name, appliedAt)
	}

	return tw.Flush()
}

func runVersion(ctx context.Context, w io.Writer, db *sql.DB, schemaName string) error {
	version, err := migration.Version(ctx, db, schemaName)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, version)
	return err
}

func runVerify(ctx context.Context, logger kitlog.Logger, w io.Writer, db *sql.DB, schemaName string, dump bool) error {
	ctx, span, logger := telem.StartSpan(telem.WithLogger(ctx, logger), "cmd/jobdb.verify",
		trace.StringAttribute("schema", schemaName),
	)
	defer span.End()

	catalog, err := schema.Inspect(ctx, db, schemaName)
	if err != nil {
		return err
	}

	if dump {
		spew.Fdump(w, catalog)
	}

	expected := schema.Expected()
	violations := expected.Verify(catalog)
	if err := schema.WriteReport(w, schemaName, expected, violations); err != nil {
		return err
	}

	if len(violations) > 0 {
		logger.Log("event", "verify.failed", "violation_count", len(violations))
		return fmt.Errorf("schema %s has %d violations: %w", schemaName, len(violations), SilentError)
	}

	logger.Log("event", "verify.passed", "schema", schemaName)
	return nil
}

func runPrint(w io.Writer, transaction, baseline bool) error {
	scripts := migration.Scripts()
	if baseline {
		scripts = append([]migration.Script{migration.Baseline}, scripts...)
	}

	return migration.Render(w, migration.RenderOptions{Transaction: transaction}, scripts...)
}

func runGoose(ctx context.Context, logger kitlog.Logger, db *sql.DB, schemaName, command string, args ...string) error {
	return migration.Goose(ctx, logger, db, schemaName, *gooseDir, command, args...)
}

// logWriter sends a rendered report through the logger, one event per write, for
// commands where stdout belongs to something else.
type logWriter struct {
	logger kitlog.Logger
}

func (l logWriter) Write(p []byte) (int, error) {
	return len(p), l.logger.Log("event", "verify.report", "report", string(p))
}

func logError(logger kitlog.Logger, err error) {
	keyvals := []interface{}{"event", "error", "error", err, "msg", "exiting with error"}

	var stmtErr *migration.StatementError
	if errors.As(err, &stmtErr) {
		keyvals = append(keyvals,
			"migration", stmtErr.Migration,
			"statement", stmtErr.Statement.Name,
			"kind", stmtErr.Kind,
			"code", stmtErr.Code,
		)
	}

	level.Error(logger).Log(keyvals...)
}

func reportError(err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		var stmtErr *migration.StatementError
		if errors.As(err, &stmtErr) {
			scope.SetTag("migration", stmtErr.Migration)
			scope.SetTag("statement", stmtErr.Statement.Name)
			scope.SetTag("kind", string(stmtErr.Kind))
			scope.SetFingerprint([]string{stmtErr.Migration, stmtErr.Statement.Name, string(stmtErr.Kind)})
		}

		sentry.CaptureException(err)
	})

	sentry.Flush(5 * time.Second)
}
