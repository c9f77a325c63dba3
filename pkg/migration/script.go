package migration

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/getajob/jobdb/internal/telem"

	kitlog "github.com/go-kit/kit/log"
	level "github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opencensus.io/trace"
)

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx, allowing scripts to run against
// whatever the caller has opened. goose hands us a transaction, while operators applying
// the baseline give us the pool.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Statement is a single DDL statement, named by the table it touches and what it does to
// it. Names appear in logs, spans, metrics and errors, so they should be stable.
type Statement struct {
	Name string
	SQL  string
}

// Script is an ordered list of statements that make up one schema change. Every
// statement in a script must be guarded (if exists, if not exists) so that running it
// against an already migrated schema does nothing.
type Script struct {
	Version    int64
	Name       string
	Statements []Statement
}

// Exec applies each statement in order, stopping at the first failure. It issues no
// transaction control of its own: callers wanting all-or-nothing behaviour should pass a
// transaction.
func (s Script) Exec(ctx context.Context, logger kitlog.Logger, conn Execer) error {
	ctx, span, logger := telem.StartSpan(telem.WithLogger(ctx, logger), "pkg/migration.Script.Exec",
		trace.StringAttribute("migration", s.Name),
		trace.Int64Attribute("version", s.Version),
		trace.Int64Attribute("statement_count", int64(len(s.Statements))),
	)
	defer span.End()

	logger = kitlog.With(logger, "migration", s.Name, "version", s.Version)
	logger.Log("event", "migration.apply", "statement_count", len(s.Statements))

	for _, stmt := range s.Statements {
		if err := s.exec(ctx, logger, conn, stmt); err != nil {
			span.SetStatus(trace.Status{Code: trace.StatusCodeAborted, Message: err.Error()})
			return err
		}
	}

	logger.Log("event", "migration.applied")
	return nil
}

func (s Script) exec(ctx context.Context, logger kitlog.Logger, conn Execer, stmt Statement) error {
	ctx, span := trace.StartSpan(ctx, "pkg/migration.Script.exec")
	defer span.End()
	span.AddAttributes(trace.StringAttribute("statement", stmt.Name))

	logger = kitlog.With(logger, "statement", stmt.Name)
	defer prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		level.Debug(logger).Log("event", "migration.statement.apply", "duration", v, "sql", oneLine(stmt.SQL))
		statementDurationSeconds.WithLabelValues(s.Name, stmt.Name).Observe(v)
	})).ObserveDuration()

	if _, err := conn.ExecContext(ctx, stmt.SQL); err != nil {
		kind, code := Classify(err)
		statementErrorsTotal.WithLabelValues(s.Name, string(kind)).Inc()
		logger.Log("event", "migration.statement.error", "kind", kind, "code", code, "error", err)

		return &StatementError{
			Migration: s.Name,
			Statement: stmt,
			Kind:      kind,
			Code:      code,
			Err:       err,
		}
	}

	return nil
}

// Apply runs the script against schemaName inside a single transaction on db. Postgres
// supports transactional DDL, so a failure part-way through leaves the schema as it was.
func Apply(ctx context.Context, logger kitlog.Logger, db *sql.DB, schemaName string, script Script) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Log("event", "migration.rollback.error", "error", rbErr)
			}
		}
	}()

	if err = pinSearchPath(ctx, tx, schemaName); err != nil {
		return err
	}

	if err = script.Exec(ctx, logger, tx); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// scripts holds every versioned script registered with goose, in whatever order the init
// functions ran.
var scripts []Script

// Scripts returns the registered versioned scripts, oldest first.
func Scripts() []Script {
	sorted := make([]Script, len(scripts))
	copy(sorted, scripts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})

	return sorted
}

// Find returns the registered script with the given version.
func Find(version int64) (Script, bool) {
	for _, script := range scripts {
		if script.Version == version {
			return script, true
		}
	}

	return Script{}, false
}

// oneLine collapses a statement onto a single line for log output.
func oneLine(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
