// Package sqlxrepos implements the repositories on top of SQLite or Postgres through sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// withTx runs `fn` inside a transaction, committed when `fn` succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// trapNoRowsErr maps sql "no rows" err to `notFound`
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == "23505"
	case *sqlite.Error:
		return e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || e.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// setClause accumulates the "col = ?" assignments of a partial UPDATE.
type setClause struct {
	cols []string
	args []interface{}
}

func (s *setClause) add(col string, val interface{}) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, val)
}

func (s *setClause) empty() bool { return len(s.cols) == 0 }

// update runs "UPDATE table SET ... WHERE id = ?" and reports whether a row matched.
func (s *setClause) update(ctx context.Context, tx *sqlx.Tx, table, id string) (bool, error) {
	q := tx.Rebind("UPDATE " + table + " SET " + strings.Join(s.cols, ", ") + " WHERE id = ?")
	res, err := tx.ExecContext(ctx, q, append(s.args, id)...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// deleteByID deletes one row and returns `notFound` when none matched.
func deleteByID(ctx context.Context, db *sqlx.DB, table, id string, notFound error) error {
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
