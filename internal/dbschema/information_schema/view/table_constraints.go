package view

import (
	"github.com/go-jet/jet/v2/postgres"
)

var TableConstraints = newTableConstraintsTable()

type TableConstraintsTable struct {
	postgres.Table

	//Columns
	ConstraintSchema postgres.ColumnString
	ConstraintName   postgres.ColumnString
	TableSchema      postgres.ColumnString
	TableName        postgres.ColumnString
	ConstraintType   postgres.ColumnString

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

func newTableConstraintsTable() *TableConstraintsTable {
	var (
		ConstraintSchemaColumn = postgres.StringColumn("constraint_schema")
		ConstraintNameColumn   = postgres.StringColumn("constraint_name")
		TableSchemaColumn      = postgres.StringColumn("table_schema")
		TableNameColumn        = postgres.StringColumn("table_name")
		ConstraintTypeColumn   = postgres.StringColumn("constraint_type")
	)

	return &TableConstraintsTable{
		Table: postgres.NewTable("information_schema", "table_constraints", ConstraintSchemaColumn, ConstraintNameColumn, TableSchemaColumn, TableNameColumn, ConstraintTypeColumn),

		//Columns
		ConstraintSchema: ConstraintSchemaColumn,
		ConstraintName:   ConstraintNameColumn,
		TableSchema:      TableSchemaColumn,
		TableName:        TableNameColumn,
		ConstraintType:   ConstraintTypeColumn,

		AllColumns:     postgres.ColumnList{ConstraintSchemaColumn, ConstraintNameColumn, TableSchemaColumn, TableNameColumn, ConstraintTypeColumn},
		MutableColumns: postgres.ColumnList{ConstraintSchemaColumn, ConstraintNameColumn, TableSchemaColumn, TableNameColumn, ConstraintTypeColumn},
	}
}
