package dbtest

import (
	"context"
	"database/sql"

	"github.com/getajob/jobdb/pkg/migration"

	kitlog "github.com/go-kit/kit/log"

	. "github.com/onsi/ginkgo"
)

// WithBaseline creates the pre-versioning tables inside the test schema, giving the
// versioned migrations the database they expect to find. Must follow WithSchema.
func WithBaseline(schema string) func(*DB) {
	return WithLifecycle(
		func(ctx context.Context, db *sql.DB) error {
			return migration.Install(ctx, kitlog.NewLogfmtLogger(GinkgoWriter), db, schema)
		},
		nil, // dropped with the schema
	)
}

// WithMigrations runs every registered migration against the test schema, after the
// baseline if WithBaseline came first.
func WithMigrations(schema string) func(*DB) {
	return WithLifecycle(
		func(ctx context.Context, db *sql.DB) error {
			return migration.Migrate(ctx, kitlog.NewLogfmtLogger(GinkgoWriter), db, schema)
		},
		nil,
	)
}
