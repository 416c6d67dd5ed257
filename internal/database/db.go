package database

import (
	"context"      // context carries deadlines and cancellation
	"database/sql" // sql provides the pool and sentinel errors
	"fmt"          // fmt wraps connect errors
	"time"         // time stamps records and bounds waits

	"github.com/go-sql-driver/mysql" // mysql driver config and error numbers
	"github.com/jmoiron/sqlx"        // sqlx scans rows into structs
)

// pingTimeout bounds the connectivity check every opener performs.
const pingTimeout = 5 * time.Second

// OpenMySQL connects to MySQL and verifies the connection.  No default
// database is selected: the words database may not exist yet, so queries
// qualify table names with it instead.
func OpenMySQL(ctx context.Context, spec *ConnSpec) (*sqlx.DB, error) {
	cfg, err := mysqlConfig(spec)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("build mysql connector: %w", err)
	}
	db := sqlx.NewDb(sql.OpenDB(connector), "mysql")

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql at %s: %w", spec.Addr(), err)
	}
	return db, nil
}

// mysqlConfig builds the driver configuration.  Only text columns are read,
// so DATETIME parsing stays off.
func mysqlConfig(spec *ConnSpec) (*mysql.Config, error) {
	cfg := mysql.NewConfig()
	cfg.User = spec.Username
	cfg.Passwd = spec.Password
	cfg.Net = "tcp"
	cfg.Addr = spec.Addr()

	tlsConf, err := spec.TLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConf != nil {
		cfg.TLS = tlsConf
	}
	return cfg, nil
}
