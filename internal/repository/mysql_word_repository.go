package repository

import (
	"context"             // context carries deadlines and cancellation
	"database/sql"        // sql provides the pool and sentinel errors
	"database/sql/driver" // driver exposes ErrBadConn
	"errors"              // errors matches wrapped driver errors
	"fmt"                 // fmt formats statements and error messages
	"strconv"             // strconv renders numeric ids

	"github.com/go-sql-driver/mysql" // mysql driver config and error numbers
	"github.com/jmoiron/sqlx"        // sqlx scans rows into structs
	"go.uber.org/zap"                // zap logs schema changes

	"github.com/iliyamo/wordbook/internal/model" // model holds WordEntry
)

// MySQL server error numbers the gateway cares about.
const (
	mysqlErrDBCreateExists = 1007
	mysqlErrAccessDenied   = 1045
	mysqlErrBadDB          = 1049
	mysqlErrTableExists    = 1050
	mysqlErrNoSuchTable    = 1146
	mysqlErrTruncatedValue = 1366
	mysqlErrDataTooLong    = 1406
)

// MySQLWordRepo stores word entries as rows of one table.  The connection
// has no default database; every statement qualifies the table.
type MySQLWordRepo struct {
	db    *sqlx.DB    // sqlx handle over the MySQL pool
	table TableSpec   // database and table names
	log   *zap.Logger // schema change logging
}

// NewMySQLWordRepo constructs a MySQLWordRepo with the provided DB handle.
func NewMySQLWordRepo(db *sqlx.DB, table TableSpec, log *zap.Logger) *MySQLWordRepo {
	return &MySQLWordRepo{db: db, table: table, log: log}
}

// qualified returns `db`.`table`.  TableSpec.Validate guarantees neither
// name contains a backtick.
func (r *MySQLWordRepo) qualified() string {
	return fmt.Sprintf("`%s`.`%s`", r.table.Database, r.table.Table)
}

// EnsureSchema checks information_schema for the database and table and
// creates whichever is missing.  A concurrent creator winning the race shows
// up as 1007/1050 and is treated as success.
func (r *MySQLWordRepo) EnsureSchema(ctx context.Context) error {
	var n int
	if err := r.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?", r.table.Database); err != nil {
		return wrap("ensure schema", err, classifyMySQL)
	}
	if n == 0 {
		_, err := r.db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4", r.table.Database))
		switch {
		case err == nil:
			r.log.Info("database created", zap.String("database", r.table.Database))
		case !isMySQLError(err, mysqlErrDBCreateExists):
			return wrap("ensure schema", err, classifyMySQL)
		}
	}

	if err := r.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?",
		r.table.Database, r.table.Table); err != nil {
		return wrap("ensure schema", err, classifyMySQL)
	}
	if n > 0 {
		return nil
	}

	// utf8mb4_bin orders by code point, matching the other backends
	ddl := fmt.Sprintf(`CREATE TABLE %s (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	word TEXT NOT NULL,
	definition TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`, r.qualified())
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		if isMySQLError(err, mysqlErrTableExists) {
			return nil
		}
		return wrap("ensure schema", err, classifyMySQL)
	}
	if r.table.Replicas > 0 {
		r.log.Debug("replica hint ignored, replication is configured on the server", zap.Int("replicas", r.table.Replicas))
	}
	r.log.Info("table created", zap.String("table", r.table.Table))
	return nil
}

// Insert appends a row and returns the entry with its auto-increment id.
func (r *MySQLWordRepo) Insert(ctx context.Context, entry model.WordEntry) (*model.WordEntry, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO "+r.qualified()+" (word, definition) VALUES (?, ?)",
		entry.Word, entry.Definition)
	if err != nil {
		return nil, wrap("insert", err, classifyMySQL)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrap("insert", err, classifyMySQL)
	}
	entry.ID = strconv.FormatInt(id, 10)
	return &entry, nil
}

// ListAll selects every row ordered by orderBy then id.
func (r *MySQLWordRepo) ListAll(ctx context.Context, orderBy string) ([]model.WordEntry, error) {
	if err := checkOrderField("list", orderBy); err != nil {
		return nil, err
	}
	// orderBy is one of the model's field constants at this point
	q := fmt.Sprintf("SELECT id, word, definition FROM %s ORDER BY `%s`, id", r.qualified(), orderBy)
	out := []model.WordEntry{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, wrap("list", err, classifyMySQL)
	}
	return out, nil
}

// Ping checks the connection.
func (r *MySQLWordRepo) Ping(ctx context.Context) error {
	return wrap("ping", r.db.PingContext(ctx), classifyMySQL)
}

// Close closes the pool.
func (r *MySQLWordRepo) Close(context.Context) error {
	return wrap("close", r.db.Close(), classifyMySQL)
}

func isMySQLError(err error, number uint16) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == number
}

func classifyMySQL(err error) Kind {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrBadDB, mysqlErrNoSuchTable:
			return KindNotFound
		case mysqlErrAccessDenied:
			return KindConnection
		case mysqlErrTruncatedValue, mysqlErrDataTooLong:
			return KindValidation
		}
		return KindUnknown
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return KindNotFound
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone), isConnectionError(err):
		return KindConnection
	}
	return KindUnknown
}
