package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects DDL and placeholder style.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is the shared handle. Each repository call checks out its own connection from it.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool // postgres only
	dialect Dialect
	logger  *slog.Logger
}

// DialectFor infers the dialect from a DSN: postgres URLs or keyword DSNs, otherwise a sqlite path.
func DialectFor(dsn string) Dialect {
	d := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") || strings.Contains(d, "host=") {
		return Postgres
	}
	return SQLite
}

// Open connects to sqlite (modernc) or postgres (pgx pool wrapped as *sql.DB) depending on the DSN.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("open database: empty dsn")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	dialect := DialectFor(cfg.DSN)
	logger.Info("connecting to database", "dialect", dialect, "dsn", redactDSN(cfg.DSN))

	db := &DB{dialect: dialect, logger: logger}
	switch dialect {
	case Postgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database dsn", "error", err)
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "uniformat-db"

		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		db.pool = pool
		db.sql = stdlib.OpenDBFromPool(pool)
	default:
		sqldb, err := sql.Open("sqlite", strings.TrimPrefix(cfg.DSN, "sqlite://"))
		if err != nil {
			logger.Error("failed to open sqlite database", "error", err)
			return nil, err
		}
		// One writer at a time; also keeps :memory: databases on a single connection.
		sqldb.SetMaxOpenConns(1)
		db.sql = sqldb
	}

	if err := db.HealthCheck(ctx, cfg.DialTimeout); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("successfully connected to database", "dialect", dialect)
	return db, nil
}

// Dialect reports which engine the handle talks to.
func (db *DB) Dialect() Dialect { return db.dialect }

// Close closes the database connections gracefully.
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if db.sql != nil {
		if err := db.sql.Close(); err != nil {
			db.logger.Error("failed to close database", "error", err)
		}
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings using database/sql to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.sql.PingContext(ctx); err != nil {
		db.logger.Error("database ping failed", "error", err)
		return err
	}
	db.logger.Debug("database ping successful")
	return nil
}

// withConn checks out a dedicated connection for the duration of fn.
func (db *DB) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := db.sql.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			db.logger.Warn("repo.conn.release_error", "error", err)
		}
	}()
	return fn(conn)
}

// withTx runs fn in one transaction on a dedicated connection. The transaction never outlives the call.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return db.withConn(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Warn("repo.tx.rollback_error", "error", rbErr)
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

// rebind rewrites ? placeholders to $n for postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
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

func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "@"); i >= 0 {
		if j := strings.Index(dsn, "://"); j >= 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	if i := strings.Index(dsn, "password="); i >= 0 {
		end := strings.IndexByte(dsn[i:], ' ')
		if end < 0 {
			return dsn[:i] + "password=***"
		}
		return dsn[:i] + "password=***" + dsn[i+end:]
	}
	return dsn
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
