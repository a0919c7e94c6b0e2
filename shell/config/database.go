package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

const (
	defaultMaxConnections    = int32(50)
	defaultMinConnections    = int32(2)
	defaultMaxIdleConns      = 2
	defaultMaxConnLifetime   = time.Hour
	defaultMaxConnIdleTime   = time.Minute * 5
	defaultHealthCheckPeriod = time.Minute
	defaultConnectTimeout    = time.Second * 5

	sqlDriverPostgres = "postgres"
	sqlDriverSQLite   = "sqlite"
)

// PGXPoolConfig parses the DSN and applies the default pool tuning.
func PGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool creates a tuned pgx pool and pings the database.
func OpenPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := PGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, pingErr)
	}

	return pool, nil
}

// OpenSQLDB opens a tuned *sql.DB for the postgres (lib/pq) or sqlite driver and pings it.
func OpenSQLDB(ctx context.Context, driver string, dsn string) (*sql.DB, error) {
	driverName, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	tune(db, driverName)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, pingErr)
	}

	return db, nil
}

// OpenSQLX opens a tuned *sqlx.DB for the postgres (lib/pq) or sqlite driver and pings it.
func OpenSQLX(ctx context.Context, driver string, dsn string) (*sqlx.DB, error) {
	driverName, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	tune(db.DB, driverName)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, pingErr)
	}

	return db, nil
}

// sqlDriverName maps a configured driver to a database/sql driver name.
// The sqlx setting means sqlx over lib/pq.
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverPostgres, DriverSQLX:
		return sqlDriverPostgres, nil
	case DriverSQLite:
		return sqlDriverSQLite, nil
	default:
		return "", errors.Join(ErrUnsupportedDriver, errors.New(driver))
	}
}

func tune(db *sql.DB, driverName string) {
	// sqlite allows a single writer; in-memory databases also vanish with their last connection.
	if driverName == sqlDriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		return
	}

	db.SetMaxOpenConns(int(defaultMaxConnections))
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
