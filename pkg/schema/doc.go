// Package schema defines the dashboard document model and its validator.
//
// A dashboard is authored as a YAML document containing metadata, a set
// of named SQL queries, and a layout of widgets placed on a 12-column
// grid. Validation is split into two stages: a syntax stage (Parse),
// which fails fast with positional detail, and a semantic stage (Check),
// which accumulates every violation so an editor can surface all of
// them at once.
package schema
