package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sqlxIn expands IN (?) placeholders into the right number of
// bindvars.
func sqlxIn(query string, args ...interface{}) (string, []interface{}, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to expand query: %w", err)
	}
	return q, a, nil
}
