package repository

import "database/sql"

// querier is satisfied by both *sql.DB and *sql.Tx so the row-scanning
// helpers can serve the per-table repositories and the snapshot loader's
// single read transaction alike.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
