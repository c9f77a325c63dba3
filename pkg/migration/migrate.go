package migration

import (
	"context"
	"database/sql"
	"io/ioutil"
	"os"
	"strings"
	"sync"
	"time"

	isv "github.com/getajob/jobdb/internal/dbschema/information_schema/view"
	"github.com/getajob/jobdb/internal/dbschema/jobdb/table"

	pg "github.com/go-jet/jet/v2/postgres"
	kitlog "github.com/go-kit/kit/log"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	"github.com/pressly/goose"
)

// goose keeps its configuration in package globals and gives Go migrations nothing but a
// transaction. We serialise runs with mu and park the caller's context, logger and schema
// here so the registered migration functions can pick them up through current().
var (
	mu        sync.Mutex
	runCtx    = context.Background()
	runLogger = kitlog.NewNopLogger()
	runSchema string
)

// current must only be called from a migration function, while mu is held.
func current() (context.Context, kitlog.Logger, string) {
	return runCtx, runLogger, runSchema
}

// useSchema points goose at the migration table inside schemaName.
func useSchema(schemaName string) {
	goose.SetTableName(pgx.Identifier{schemaName, table.SchemaMigrationsTableName}.Sanitize())
}

// pinSearchPath makes unqualified names in the rest of the transaction resolve to
// schemaName, whatever the connection was opened with.
func pinSearchPath(ctx context.Context, conn Execer, schemaName string) error {
	_, err := conn.ExecContext(ctx, `set local search_path to `+pgx.Identifier{schemaName}.Sanitize()+`;`)
	return errors.Wrap(err, "failed to set search_path")
}

// withGoose prepares goose for schemaName and runs fn with mu held. An empty dir is
// replaced by a scratch directory: goose insists on one, but our migrations are compiled
// in.
func withGoose(ctx context.Context, logger kitlog.Logger, schemaName, dir string, fn func(dir string) error) error {
	mu.Lock()
	defer mu.Unlock()

	useSchema(schemaName)

	runCtx, runLogger, runSchema = ctx, logger, schemaName
	defer func() {
		runCtx, runLogger, runSchema = context.Background(), kitlog.NewNopLogger(), ""
	}()

	if dir == "" {
		scratch, err := ioutil.TempDir("", "jobdb-migrations-")
		if err != nil {
			return errors.Wrap(err, "failed to create scratch migration directory")
		}
		defer os.RemoveAll(scratch)

		dir = scratch
	}

	return fn(dir)
}

// Migrate applies every pending versioned script to schemaName. Each script runs in its
// own transaction together with the goose version row, so a failed script leaves neither
// schema changes nor bookkeeping behind. Running Migrate against an up-to-date schema
// does nothing.
func Migrate(ctx context.Context, logger kitlog.Logger, db *sql.DB, schemaName string) error {
	if err := createSchema(ctx, logger, db, schemaName); err != nil {
		return err
	}

	return withGoose(ctx, logger, schemaName, "", func(dir string) error {
		logger.Log("event", "migration.run", "schema", schemaName)
		if err := goose.Up(db, dir); err != nil {
			return errors.Wrap(err, "failed to migrate database")
		}

		version, err := goose.GetDBVersion(db)
		if err != nil {
			return errors.Wrap(err, "failed to read schema version")
		}

		schemaVersion.Set(float64(version))
		logger.Log("event", "migration.complete", "schema", schemaName, "version", version)

		return nil
	})
}

func createSchema(ctx context.Context, logger kitlog.Logger, db *sql.DB, schemaName string) error {
	logger.Log("event", "schema.create", "schema", schemaName)
	if _, err := db.ExecContext(ctx, `create schema if not exists `+pgx.Identifier{schemaName}.Sanitize()+`;`); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}

	return nil
}

// Install creates the baseline tables in schemaName, for databases that predate jobdb.
// Every statement is guarded, so it is safe against a database that already has them.
func Install(ctx context.Context, logger kitlog.Logger, db *sql.DB, schemaName string) error {
	if err := createSchema(ctx, logger, db, schemaName); err != nil {
		return err
	}

	logger.Log("event", "baseline.install", "schema", schemaName)
	if err := Apply(ctx, logger, db, schemaName, Baseline); err != nil {
		return errors.Wrap(err, "failed to install baseline schema")
	}

	return nil
}

// hasMigrationTable is checked before asking goose anything, as goose creates the table
// on first contact and read-only commands shouldn't write.
func hasMigrationTable(ctx context.Context, db *sql.DB, schemaName string) (bool, error) {
	query, args := isv.Tables.
		SELECT(isv.Tables.TableName).
		WHERE(
			isv.Tables.TableSchema.EQ(pg.String(schemaName)).
				AND(isv.Tables.TableName.EQ(pg.String(table.SchemaMigrationsTableName))),
		).
		Sql()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, "failed to look for migration table")
	}

	defer rows.Close()
	found := rows.Next()

	return found, rows.Err()
}

// Version returns the most recent version goose has recorded as applied, or zero if
// schemaName has never been migrated.
func Version(ctx context.Context, db *sql.DB, schemaName string) (int64, error) {
	exists, err := hasMigrationTable(ctx, db, schemaName)
	if err != nil || !exists {
		return 0, err
	}

	var version int64
	err = withGoose(ctx, kitlog.NewNopLogger(), schemaName, "", func(string) (err error) {
		version, err = goose.GetDBVersion(db)
		return errors.Wrap(err, "failed to read schema version")
	})

	return version, err
}

// MigrationStatus describes whether a registered script has been applied.
type MigrationStatus struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Status reports on every registered script, oldest first. A schema without a migration
// table, or that doesn't exist at all, has every script pending.
func Status(ctx context.Context, db *sql.DB, schemaName string) ([]MigrationStatus, error) {
	exists, err := hasMigrationTable(ctx, db, schemaName)
	if err != nil {
		return nil, err
	}

	// goose appends a row for every up and down, so the last row for a version wins
	latest := map[int64]MigrationStatus{}
	if exists {
		migrations := table.SchemaMigrations(schemaName)
		query, args := migrations.
			SELECT(migrations.VersionID, migrations.IsApplied, migrations.Tstamp).
			ORDER_BY(migrations.ID.ASC()).
			Sql()

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to query migration table")
		}

		defer rows.Close()

		for rows.Next() {
			var (
				status    MigrationStatus
				appliedAt time.Time
			)
			if err := rows.Scan(&status.Version, &status.Applied, &appliedAt); err != nil {
				return nil, errors.Wrap(err, "failed to scan migration row")
			}

			status.AppliedAt = &appliedAt
			latest[status.Version] = status
		}

		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to read migration table")
		}
	}

	var statuses []MigrationStatus
	for _, script := range Scripts() {
		status := MigrationStatus{Version: script.Version, Name: script.Name}
		if recorded, ok := latest[script.Version]; ok && recorded.Applied {
			status.Applied, status.AppliedAt = true, recorded.AppliedAt
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// Goose passes command through to goose against the migration table in schemaName, for
// the operations jobdb doesn't wrap itself (create, redo, up-to, ...). dir is only needed
// by commands that write migration files; leave it empty otherwise. Down migrations are
// irreversible, so anything that rolls back fails inside its transaction and leaves the
// schema and version untouched.
func Goose(ctx context.Context, logger kitlog.Logger, db *sql.DB, schemaName, dir, command string, args ...string) error {
	return withGoose(ctx, logger, schemaName, dir, func(dir string) error {
		logger.Log("event", "goose.run", "command", command, "args", strings.Join(args, " "))
		if err := goose.Run(command, db, dir, args...); err != nil {
			return errors.Wrapf(err, "goose %s failed", command)
		}

		return nil
	})
}
