// Package view holds go-jet definitions for the information_schema views jobdb reads
// when inspecting a schema. Only the columns we query are declared.
package view
