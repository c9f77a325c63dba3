package migration

import (
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
)

// ErrIrreversible is returned by every down migration. Schema changes here drop columns,
// so there is nothing to restore the data from.
var ErrIrreversible = errors.New("migration is forward-only and cannot be reversed")

// Kind groups statement failures by what the operator needs to fix before re-running.
type Kind string

const (
	KindPrivilege         Kind = "privilege"
	KindMissingDependency Kind = "missing_dependency"
	KindConstraint        Kind = "constraint_violation"
	KindUnknown           Kind = "unknown"
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeInsufficientPrivilege = "42501"
	codeUndefinedTable        = "42P01"
	codeUndefinedColumn       = "42703"
	codeUndefinedObject       = "42704"
	codeInvalidSchemaName     = "3F000"
	classIntegrityConstraint  = "23"
)

// StatementError is returned when a statement in a script fails. The original driver
// error is preserved and can be reached with errors.As.
type StatementError struct {
	Migration string
	Statement Statement
	Kind      Kind
	Code      string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s: statement %s failed (%s): %v", e.Migration, e.Statement.Name, e.Kind, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// Classify maps a driver error onto a Kind, returning the SQLSTATE code when the error
// came from Postgres.
func Classify(err error) (Kind, string) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindUnknown, ""
	}

	switch {
	case pgErr.Code == codeInsufficientPrivilege:
		return KindPrivilege, pgErr.Code
	case pgErr.Code == codeUndefinedTable,
		pgErr.Code == codeUndefinedColumn,
		pgErr.Code == codeUndefinedObject,
		pgErr.Code == codeInvalidSchemaName:
		return KindMissingDependency, pgErr.Code
	case strings.HasPrefix(pgErr.Code, classIntegrityConstraint):
		return KindConstraint, pgErr.Code
	}

	return KindUnknown, pgErr.Code
}
