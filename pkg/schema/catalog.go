package schema

import "sort"

// Catalog is a snapshot of the tables in a single Postgres schema, as seen through
// information_schema and pg_catalog.
type Catalog struct {
	Schema string
	Tables map[string]*Table
}

// Table returns the named table, or nil if the schema doesn't have it.
func (c *Catalog) Table(name string) *Table {
	if c == nil || c.Tables == nil {
		return nil
	}

	return c.Tables[name]
}

// TableNames returns every table name, sorted.
func (c *Catalog) TableNames() []string {
	names := []string{}
	for name := range c.Tables {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func (c *Catalog) getOrCreate(name string) *Table {
	if c.Tables == nil {
		c.Tables = map[string]*Table{}
	}

	table, ok := c.Tables[name]
	if !ok {
		table = &Table{Name: name}
		c.Tables[name] = table
	}

	return table
}

type Table struct {
	Name        string
	Columns     []Column // in ordinal order
	PrimaryKey  []string
	Uniques     []Unique
	ForeignKeys []ForeignKey
	Indexes     []Index
}

type Column struct {
	Name      string
	DataType  string  // information_schema spelling, e.g. "character varying"
	MaxLength *int32  // only set for character types
	Nullable  bool
	Default   *string // expression, as Postgres prints it
}

type Unique struct {
	Name    string
	Columns []string
}

type ForeignKey struct {
	Name             string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
	DeleteRule       string // CASCADE, NO ACTION, RESTRICT, SET NULL, SET DEFAULT
}

type Index struct {
	Name       string
	Definition string
}

func (t *Table) Column(name string) *Column {
	for idx := range t.Columns {
		if t.Columns[idx].Name == name {
			return &t.Columns[idx]
		}
	}

	return nil
}

func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		names = append(names, column.Name)
	}

	return names
}

// ForeignKey finds the foreign key constraint declared on column.
func (t *Table) ForeignKey(column string) *ForeignKey {
	for idx := range t.ForeignKeys {
		if t.ForeignKeys[idx].Column == column {
			return &t.ForeignKeys[idx]
		}
	}

	return nil
}

// HasUnique is true if a unique constraint covers exactly the given columns, in order.
func (t *Table) HasUnique(columns ...string) bool {
	for _, unique := range t.Uniques {
		if equalStrings(unique.Columns, columns) {
			return true
		}
	}

	return false
}

func (t *Table) Index(name string) *Index {
	for idx := range t.Indexes {
		if t.Indexes[idx].Name == name {
			return &t.Indexes[idx]
		}
	}

	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for idx := range a {
		if a[idx] != b[idx] {
			return false
		}
	}

	return true
}
