package foreign

import (
	"database/sql"
	"fmt"
	"log/slog"
	"slate/internal/args"
	"slate/internal/object"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dbConn is the payload of a db handle. An open transaction captures every
// statement until it is committed or rolled back.
type dbConn struct {
	driver string
	db     *sql.DB
	tx     *sql.Tx
	closed bool
}

func (c *dbConn) close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	return c.db.Close()
}

func dbBehavior() object.ForeignBehavior {
	return object.ForeignBehavior{
		Free: func(payload any) {
			c := payload.(*dbConn)
			if c.closed {
				return
			}
			slog.Debug("closing unreachable database handle", slog.String("driver", c.driver))
			if err := c.close(); err != nil {
				slog.Warn("failed to close database", slog.String("driver", c.driver), slog.Any("error", err))
			}
		},
		String: func(payload any) string {
			c := payload.(*dbConn)
			if c.closed {
				return fmt.Sprintf("#<db %s closed>", c.driver)
			}
			return fmt.Sprintf("#<db %s>", c.driver)
		},
	}
}

// openConn resolves the db handle argument and rejects closed connections.
func openConn(ctx object.EvaluatorContext, caller string, argv []object.Object) (*dbConn, *object.Error) {
	t, _ := ctx.Registry().Lookup("db")
	vals, errObj := args.Parse(caller, []args.Param{args.Foreign("db", t)}, argv)
	if errObj != nil {
		return nil, errObj
	}
	c := vals.Payload(0).(*dbConn)
	if c.closed {
		return nil, ctx.NewError(object.IOErrorTag, "%s: database is closed", caller)
	}
	return c, nil
}

func fnDbOpen() *object.Foreign {
	params := args.MustFormat("ss")
	return &object.Foreign{
		Name:    "db-open",
		MaxArgs: 2,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			vals, errObj := args.Parse("db-open", params, argv)
			if errObj != nil {
				return errObj
			}
			driver, dsn := vals.String(0), vals.String(1)

			db, err := sql.Open(driver, dsn)
			if err != nil {
				return ctx.NewError(object.IOErrorTag, "db-open: failed to open connection: %v", err)
			}
			if driver == "sqlite3" {
				// every pooled connection to :memory: would be a separate database
				db.SetMaxOpenConns(1)
			}
			if err := db.Ping(); err != nil {
				_ = db.Close()
				return ctx.NewError(object.IOErrorTag, "db-open: failed to ping database: %v", err)
			}

			t, _ := ctx.Registry().Lookup("db")
			slog.Info("opened database", slog.String("driver", driver))
			return ctx.NewForeignValue(t, &dbConn{driver: driver, db: db})
		},
	}
}

func fnDbQuery() *object.Foreign {
	return &object.Foreign{
		Name:    "db-query",
		MinArgs: 2,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			c, errObj := openConn(ctx, "db-query", argv)
			if errObj != nil {
				return errObj
			}
			query, ok := argv[1].(*object.String)
			if !ok {
				return object.WrongTypeArg("db-query", 2, argv[1], "string")
			}

			var rows *sql.Rows
			var err error
			if c.tx != nil {
				rows, err = c.tx.Query(query.Value, sqlParams(argv[2:])...)
			} else {
				rows, err = c.db.Query(query.Value, sqlParams(argv[2:])...)
			}
			if err != nil {
				return ctx.NewError(object.IOErrorTag, "db-query: query failed: %v", err)
			}
			defer rows.Close()

			return renderRows(ctx, rows)
		},
	}
}

// fnDbExec returns (rows-affected . last-insert-id). Drivers that do not
// report one of the counts yield 0 for it.
func fnDbExec() *object.Foreign {
	return &object.Foreign{
		Name:    "db-exec",
		MinArgs: 2,
		MaxArgs: -1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			c, errObj := openConn(ctx, "db-exec", argv)
			if errObj != nil {
				return errObj
			}
			stmt, ok := argv[1].(*object.String)
			if !ok {
				return object.WrongTypeArg("db-exec", 2, argv[1], "string")
			}

			var result sql.Result
			var err error
			if c.tx != nil {
				result, err = c.tx.Exec(stmt.Value, sqlParams(argv[2:])...)
			} else {
				result, err = c.db.Exec(stmt.Value, sqlParams(argv[2:])...)
			}
			if err != nil {
				return ctx.NewError(object.IOErrorTag, "db-exec: exec failed: %v", err)
			}

			affected, _ := result.RowsAffected()
			lastID, _ := result.LastInsertId()
			return object.Cons(&object.Integer{Value: affected}, &object.Integer{Value: lastID})
		},
	}
}

func fnDbClose() *object.Foreign {
	return &object.Foreign{
		Name:    "db-close",
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			c, errObj := openConn(ctx, "db-close", argv)
			if errObj != nil {
				return errObj
			}
			if err := c.close(); err != nil {
				return ctx.NewError(object.IOErrorTag, "db-close: %v", err)
			}
			return object.UNSPECIFIED
		},
	}
}

func fnDbBegin() *object.Foreign {
	return &object.Foreign{
		Name:    "db-begin",
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			c, errObj := openConn(ctx, "db-begin", argv)
			if errObj != nil {
				return errObj
			}
			if c.tx != nil {
				return ctx.NewError(object.IOErrorTag, "db-begin: transaction already open")
			}
			tx, err := c.db.Begin()
			if err != nil {
				return ctx.NewError(object.IOErrorTag, "db-begin: failed to begin transaction: %v", err)
			}
			c.tx = tx
			return argv[0]
		},
	}
}

func fnDbCommit() *object.Foreign {
	return &object.Foreign{
		Name:    "db-commit",
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			c, errObj := openConn(ctx, "db-commit", argv)
			if errObj != nil {
				return errObj
			}
			if c.tx == nil {
				return ctx.NewError(object.IOErrorTag, "db-commit: no open transaction")
			}
			err := c.tx.Commit()
			c.tx = nil
			if err != nil {
				return ctx.NewError(object.IOErrorTag, "db-commit: failed to commit transaction: %v", err)
			}
			return argv[0]
		},
	}
}

func fnDbRollback() *object.Foreign {
	return &object.Foreign{
		Name:    "db-rollback",
		MaxArgs: 1,
		Fn: func(ctx object.EvaluatorContext, argv ...object.Object) object.Object {
			c, errObj := openConn(ctx, "db-rollback", argv)
			if errObj != nil {
				return errObj
			}
			if c.tx == nil {
				return ctx.NewError(object.IOErrorTag, "db-rollback: no open transaction")
			}
			err := c.tx.Rollback()
			c.tx = nil
			if err != nil {
				return ctx.NewError(object.IOErrorTag, "db-rollback: failed to rollback transaction: %v", err)
			}
			return argv[0]
		},
	}
}

// sqlParams converts script values to driver arguments. The empty list is
// NULL.
func sqlParams(argv []object.Object) []interface{} {
	params := make([]interface{}, len(argv))
	for i, arg := range argv {
		switch v := arg.(type) {
		case *object.Integer:
			params[i] = v.Value
		case *object.Real:
			params[i] = v.Value
		case *object.String:
			params[i] = v.Value
		case *object.Boolean:
			params[i] = v.Value
		case *object.Nil:
			params[i] = nil
		default:
			params[i] = arg.Inspect()
		}
	}
	return params
}

// renderRows turns a result set into a list of association lists keyed by
// column name symbols.
func renderRows(ctx object.EvaluatorContext, rows *sql.Rows) object.Object {
	columns, err := rows.Columns()
	if err != nil {
		return ctx.NewError(object.IOErrorTag, "db-query: %v", err)
	}
	types, _ := rows.ColumnTypes()

	var resultRows []object.Object
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return ctx.NewError(object.IOErrorTag, "db-query: scan failed: %v", err)
		}

		fields := make([]object.Object, len(columns))
		for i, col := range columns {
			var typeName string
			if i < len(types) {
				typeName = types[i].DatabaseTypeName()
			}
			fields[i] = object.Cons(object.InternSymbol(col), mapValue(values[i], typeName))
		}
		resultRows = append(resultRows, object.List(fields...))
	}
	if err := rows.Err(); err != nil {
		return ctx.NewError(object.IOErrorTag, "db-query: %v", err)
	}
	return object.List(resultRows...)
}

func mapValue(v interface{}, dbType string) object.Object {
	if v == nil {
		return object.NIL
	}
	switch x := v.(type) {
	case int64:
		return &object.Integer{Value: x}
	case float64:
		return &object.Real{Value: x}
	case []byte:
		// BLOB columns stay byte-for-byte; scripts only have strings to hold them.
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case bool:
		return object.NativeBool(x)
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		slog.Debug("unmapped column value",
			slog.String("dbType", dbType),
			slog.String("goType", fmt.Sprintf("%T", v)))
		return &object.String{Value: fmt.Sprintf("%v", v)}
	}
}
