package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-side view of a failed request: the typed code, the
// wrap chain and whatever the database driver said.
type ErrorDump struct {
	TopMessage string
	Code       Code
	Retryable  bool
	Chain      []string

	Driver     string
	DBCode     string
	Constraint string
	Table      string
	Column     string
	Detail     string
	DBMessage  string
}

var sqliteConstraintPrefixes = []string{
	"UNIQUE constraint failed",
	"FOREIGN KEY constraint failed",
	"CHECK constraint failed",
	"NOT NULL constraint failed",
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.Driver = "postgres"
		d.DBCode, d.Constraint, d.Table = pgxErr.Code, pgxErr.ConstraintName, pgxErr.TableName
		d.Column, d.Detail, d.DBMessage = pgxErr.ColumnName, pgxErr.Detail, pgxErr.Message
	case errors.As(err, &pqErr):
		d.Driver = "postgres"
		d.DBCode, d.Constraint, d.Table = string(pqErr.Code), pqErr.Constraint, pqErr.Table
		d.Column, d.Detail, d.DBMessage = pqErr.Column, pqErr.Detail, pqErr.Message
	default:
		d.fillSQLite(err)
	}
	return d
}

// fillSQLite recognises constraint failures from the sqlite driver, which
// only reports them as text such as "UNIQUE constraint failed: earnings.order_line_id".
func (d *ErrorDump) fillSQLite(err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		for _, prefix := range sqliteConstraintPrefixes {
			idx := strings.Index(msg, prefix)
			if idx < 0 {
				continue
			}
			d.Driver = "sqlite"
			d.DBMessage = msg[idx:]
			target := strings.TrimSpace(strings.TrimPrefix(msg[idx+len(prefix):], ":"))
			if table, column, ok := strings.Cut(target, "."); ok {
				d.Table, d.Column = table, column
			}
			d.Constraint = target
			return
		}
	}
}

// Fields flattens the dump into structured log fields, skipping empty values.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
		fields["retryable"] = d.Retryable
	}
	optional := map[string]string{
		"db_driver":     d.Driver,
		"db_code":       d.DBCode,
		"db_constraint": d.Constraint,
		"db_table":      d.Table,
		"db_column":     d.Column,
		"db_detail":     d.Detail,
		"db_message":    d.DBMessage,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}
