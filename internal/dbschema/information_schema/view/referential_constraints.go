package view

import (
	"github.com/go-jet/jet/v2/postgres"
)

var ReferentialConstraints = newReferentialConstraintsTable()

type ReferentialConstraintsTable struct {
	postgres.Table

	//Columns
	ConstraintSchema postgres.ColumnString
	ConstraintName   postgres.ColumnString
	UpdateRule       postgres.ColumnString
	DeleteRule       postgres.ColumnString

	AllColumns     postgres.ColumnList
	MutableColumns postgres.ColumnList
}

func newReferentialConstraintsTable() *ReferentialConstraintsTable {
	var (
		ConstraintSchemaColumn = postgres.StringColumn("constraint_schema")
		ConstraintNameColumn   = postgres.StringColumn("constraint_name")
		UpdateRuleColumn       = postgres.StringColumn("update_rule")
		DeleteRuleColumn       = postgres.StringColumn("delete_rule")
	)

	return &ReferentialConstraintsTable{
		Table: postgres.NewTable("information_schema", "referential_constraints", ConstraintSchemaColumn, ConstraintNameColumn, UpdateRuleColumn, DeleteRuleColumn),

		//Columns
		ConstraintSchema: ConstraintSchemaColumn,
		ConstraintName:   ConstraintNameColumn,
		UpdateRule:       UpdateRuleColumn,
		DeleteRule:       DeleteRuleColumn,

		AllColumns:     postgres.ColumnList{ConstraintSchemaColumn, ConstraintNameColumn, UpdateRuleColumn, DeleteRuleColumn},
		MutableColumns: postgres.ColumnList{ConstraintSchemaColumn, ConstraintNameColumn, UpdateRuleColumn, DeleteRuleColumn},
	}
}
