// Package store provides database access methods for all ProPage entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict marks a uniqueness conflict caught by a store's own
// pre-check before the insert was attempted.
var ErrConflict = errors.New("already exists")

// IsConflict reports whether err is a uniqueness conflict: either a store
// pre-check wrapping ErrConflict, or the PostgreSQL unique-violation the
// race loser gets when the pre-check passed but the constraint fired.
func IsConflict(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	// 23505 = unique_violation
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// patchBuilder accumulates SET clauses and arguments for sparse UPDATE
// statements. Only the columns a caller provides end up in the query, so an
// omitted field can never null out existing data.
type patchBuilder struct {
	sets []string
	args []any
}

// add appends a SET clause for column with the given value.
func (b *patchBuilder) add(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// arg appends a non-SET argument (e.g. the WHERE key) and returns its
// placeholder position.
func (b *patchBuilder) arg(value any) int {
	b.args = append(b.args, value)
	return len(b.args)
}

// nullIfEmpty maps an empty string to SQL NULL. Nullable text columns are
// cleared by submitting an empty value.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
