package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-only view of an error chain, including any database
// diagnostics the driver attached.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	SQLState   string `json:"sql_state,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	DBMessage  string `json:"db_message,omitempty"`

	// Field is the API field a known inventory constraint guards.
	Field string `json:"field,omitempty"`
}

// constraintFields maps schema constraints to the request field they protect.
var constraintFields = map[string]string{
	"categories_name_key":     "name",
	"size_options_name_key":   "name",
	"items_container_id_fkey": "containerId",
	"items_category_id_fkey":  "categoryId",
	"categories.name":         "name",
	"size_options.name":       "name",
}

const sqliteUniquePrefix = "UNIQUE constraint failed: "

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.SQLState = pgxErr.Code
		d.Constraint = pgxErr.ConstraintName
		d.Table = pgxErr.TableName
		d.Column = pgxErr.ColumnName
		d.Detail = pgxErr.Detail
		d.DBMessage = pgxErr.Message
	case errors.As(err, &pqErr):
		d.SQLState = string(pqErr.Code)
		d.Constraint = pqErr.Constraint
		d.Table = pqErr.Table
		d.Column = pqErr.Column
		d.Detail = pqErr.Detail
		d.DBMessage = pqErr.Message
	default:
		d.fromSQLiteMessage(err.Error())
	}

	d.Field = constraintFields[d.Constraint]
	return d
}

// fromSQLiteMessage recovers table and column from sqlite's textual
// constraint errors, e.g. "UNIQUE constraint failed: categories.name".
func (d *ErrorDump) fromSQLiteMessage(msg string) {
	i := strings.Index(msg, sqliteUniquePrefix)
	if i < 0 {
		if strings.Contains(msg, "FOREIGN KEY constraint failed") {
			d.DBMessage = "FOREIGN KEY constraint failed"
		}
		return
	}
	target := strings.TrimSpace(msg[i+len(sqliteUniquePrefix):])
	if comma := strings.Index(target, ","); comma >= 0 {
		target = target[:comma]
	}
	d.DBMessage = strings.TrimSpace(msg[i:])
	d.Constraint = target
	if table, column, ok := strings.Cut(target, "."); ok {
		d.Table = table
		d.Column = column
	}
}
