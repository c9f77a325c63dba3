package schema

import (
	"fmt"
	"strings"

	"github.com/getajob/jobdb/pkg/util"
)

// Expectation describes what a schema should look like once every migration has been
// applied. It only covers what jobdb is responsible for: tables may carry other columns.
type Expectation struct {
	Tables []TableSpec
}

type TableSpec struct {
	Name        string
	Columns     []ColumnSpec
	Absent      []string   // columns that must not exist
	PrimaryKey  []string   // nil skips the check
	Uniques     [][]string // each entry is a column list, in order
	ForeignKeys []ForeignKeySpec
	Indexes     []string
}

type ColumnSpec struct {
	Name      string
	DataType  string
	MaxLength int32 // zero skips the check
	Nullable  bool
	// Default is compared, ignoring case, against the start of the expression Postgres
	// reports, so "nextval(" matches any serial. Empty skips the check.
	Default string
}

type ForeignKeySpec struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	DeleteRule       string
}

const (
	typeVarchar   = "character varying"
	typeText      = "text"
	typeInteger   = "integer"
	typeTimestamp = "timestamp without time zone"
)

func varchar(name string, nullable bool) ColumnSpec {
	return ColumnSpec{Name: name, DataType: typeVarchar, MaxLength: 255, Nullable: nullable}
}

// Expected is the layout produced by the registered migrations.
func Expected() Expectation {
	return Expectation{
		Tables: []TableSpec{
			{
				Name: "applications",
				Columns: []ColumnSpec{
					varchar("job_title", true),
					varchar("company", true),
					varchar("location", true),
					{Name: "job_url", DataType: typeText, Nullable: true},
					{Name: "job_description", DataType: typeText, Nullable: true},
				},
				Absent: []string{"job_id"},
			},
			{
				Name: "interview_sessions",
				Columns: []ColumnSpec{
					{Name: "job_description", DataType: typeText, Nullable: true},
					varchar("job_title", true),
				},
				Absent: []string{"job_id"},
			},
			{
				Name: "jobs",
				Columns: []ColumnSpec{
					{Name: "user_id", DataType: typeInteger, Nullable: true},
				},
				ForeignKeys: []ForeignKeySpec{
					{Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id", DeleteRule: "NO ACTION"},
				},
				Indexes: []string{"idx_jobs_user_id"},
			},
			{
				Name: "users",
				Columns: []ColumnSpec{
					varchar("headline", true),
					{Name: "summary", DataType: typeText, Nullable: true},
				},
			},
			{
				Name: "skipped_jobs",
				Columns: []ColumnSpec{
					{Name: "id", DataType: typeInteger, Nullable: false, Default: "nextval("},
					{Name: "user_id", DataType: typeInteger, Nullable: false},
					varchar("title", false),
					varchar("company", false),
					varchar("location", true),
					{Name: "skipped_at", DataType: typeTimestamp, Nullable: true, Default: "CURRENT_TIMESTAMP"},
				},
				PrimaryKey: []string{"id"},
				Uniques: [][]string{
					{"user_id", "title", "company", "location"},
				},
				ForeignKeys: []ForeignKeySpec{
					{Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id", DeleteRule: "CASCADE"},
				},
				Indexes: []string{"idx_skipped_jobs_user_id"},
			},
		},
	}
}

// TableNames lists the tables the expectation covers.
func (e Expectation) TableNames() []string {
	names := make([]string, 0, len(e.Tables))
	for _, table := range e.Tables {
		names = append(names, table.Name)
	}

	return names
}

// Violation is a single way in which a catalog differs from an expectation.
type Violation struct {
	Table   string
	Subject string // column, constraint or index name, empty for the table itself
	Message string
}

func (v Violation) String() string {
	if v.Subject == "" {
		return fmt.Sprintf("%s: %s", v.Table, v.Message)
	}

	return fmt.Sprintf("%s.%s: %s", v.Table, v.Subject, v.Message)
}

// Verify compares catalog against the expectation, returning every difference. An empty
// result means the schema is as expected.
func (e Expectation) Verify(catalog *Catalog) []Violation {
	violations := []Violation{}
	for _, spec := range e.Tables {
		violations = append(violations, spec.verify(catalog.Table(spec.Name))...)
	}

	return violations
}

func (s TableSpec) verify(table *Table) (violations []Violation) {
	add := func(subject, format string, args ...interface{}) {
		violations = append(violations, Violation{
			Table: s.Name, Subject: subject, Message: fmt.Sprintf(format, args...),
		})
	}

	if table == nil {
		add("", "table does not exist")
		return
	}

	actual := table.ColumnNames()
	for _, name := range util.Diff(s.columnNames(), actual) {
		add(name, "column does not exist")
	}

	for _, name := range util.Intersect(s.Absent, actual) {
		add(name, "column should have been dropped")
	}

	for _, spec := range s.Columns {
		column := table.Column(spec.Name)
		if column == nil {
			continue // reported above
		}

		if column.DataType != spec.DataType {
			add(spec.Name, "expected type %s, found %s", spec.DataType, column.DataType)
		}
		if spec.MaxLength > 0 && (column.MaxLength == nil || *column.MaxLength != spec.MaxLength) {
			add(spec.Name, "expected max length %d, found %s", spec.MaxLength, formatLength(column.MaxLength))
		}
		if column.Nullable != spec.Nullable {
			add(spec.Name, "expected nullable=%v, found nullable=%v", spec.Nullable, column.Nullable)
		}
		if spec.Default != "" && !hasDefault(column, spec.Default) {
			add(spec.Name, "expected default %s, found %s", spec.Default, formatDefault(column.Default))
		}
	}

	if s.PrimaryKey != nil && !equalStrings(table.PrimaryKey, s.PrimaryKey) {
		add("", "expected primary key %v, found %v", s.PrimaryKey, table.PrimaryKey)
	}

	for _, columns := range s.Uniques {
		if !table.HasUnique(columns...) {
			add("", "missing unique constraint on %v", columns)
		}
	}

	for _, spec := range s.ForeignKeys {
		fk := table.ForeignKey(spec.Column)
		switch {
		case fk == nil:
			add(spec.Column, "missing foreign key to %s(%s)", spec.ReferencedTable, spec.ReferencedColumn)
		case fk.ReferencedTable != spec.ReferencedTable || fk.ReferencedColumn != spec.ReferencedColumn:
			add(spec.Column, "foreign key references %s(%s), expected %s(%s)",
				fk.ReferencedTable, fk.ReferencedColumn, spec.ReferencedTable, spec.ReferencedColumn)
		case fk.DeleteRule != spec.DeleteRule:
			add(spec.Column, "foreign key has on delete %s, expected %s", fk.DeleteRule, spec.DeleteRule)
		}
	}

	for _, name := range s.Indexes {
		if table.Index(name) == nil {
			add(name, "index does not exist")
		}
	}

	return
}

func (s TableSpec) columnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, column := range s.Columns {
		names = append(names, column.Name)
	}

	return names
}

func hasDefault(column *Column, prefix string) bool {
	if column.Default == nil || len(*column.Default) < len(prefix) {
		return false
	}

	return strings.EqualFold((*column.Default)[:len(prefix)], prefix)
}

func formatDefault(expr *string) string {
	if expr == nil {
		return "none"
	}

	return *expr
}

func formatLength(length *int32) string {
	if length == nil {
		return "none"
	}

	return fmt.Sprintf("%d", *length)
}
