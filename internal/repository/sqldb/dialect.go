package sqldb

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// pgUniqueViolation is the SQLSTATE PostgreSQL reports for a unique index collision.
const pgUniqueViolation = "23505"

func (d dialect) String() string {
	switch d {
	case dialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// rebind rewrites "?" placeholders as "$1, $2, ..." for PostgreSQL.
// None of our queries contain a literal question mark.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation reports whether err is a unique or primary key collision.
func (d dialect) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	if d == dialectPostgres {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
