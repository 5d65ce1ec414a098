package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// level3_code cannot be unique (level-4 rows repeat it), so it is indexed instead.
var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS uniformat_codes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT,
		level1_code TEXT,
		level1_name TEXT,
		level2_code TEXT,
		level2_name TEXT,
		level3_code TEXT,
		level3_name TEXT,
		level4_code TEXT,
		level4_name TEXT,
		description TEXT,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uniformat_codes_level3_code ON uniformat_codes (level3_code)`,
	`CREATE TABLE IF NOT EXISTS uniformat_inclusions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uniformat_code_id INTEGER,
		inclusion_text TEXT,
		FOREIGN KEY (uniformat_code_id) REFERENCES uniformat_codes (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uniformat_inclusions_code_id ON uniformat_inclusions (uniformat_code_id)`,
	`CREATE TABLE IF NOT EXISTS uniformat_exclusions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uniformat_code_id INTEGER,
		exclusion_text TEXT,
		FOREIGN KEY (uniformat_code_id) REFERENCES uniformat_codes (id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uniformat_exclusions_code_id ON uniformat_exclusions (uniformat_code_id)`,
}

// Postgres enforces foreign keys, which would block the destructive code reload; the
// back reference is a plain indexed column there.
var postgresDDL = []string{
	`CREATE TABLE IF NOT EXISTS uniformat_codes (
		id BIGSERIAL PRIMARY KEY,
		type TEXT,
		level1_code TEXT,
		level1_name TEXT,
		level2_code TEXT,
		level2_name TEXT,
		level3_code TEXT,
		level3_name TEXT,
		level4_code TEXT,
		level4_name TEXT,
		description TEXT,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uniformat_codes_level3_code ON uniformat_codes (level3_code)`,
	`CREATE TABLE IF NOT EXISTS uniformat_inclusions (
		id BIGSERIAL PRIMARY KEY,
		uniformat_code_id BIGINT,
		inclusion_text TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uniformat_inclusions_code_id ON uniformat_inclusions (uniformat_code_id)`,
	`CREATE TABLE IF NOT EXISTS uniformat_exclusions (
		id BIGSERIAL PRIMARY KEY,
		uniformat_code_id BIGINT,
		exclusion_text TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uniformat_exclusions_code_id ON uniformat_exclusions (uniformat_code_id)`,
}

// InitSchema creates the three tables if they do not exist. There are no migrations.
func (db *DB) InitSchema(ctx context.Context) error {
	start := time.Now()
	ddl := sqliteDDL
	if db.dialect == Postgres {
		ddl = postgresDDL
	}
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range ddl {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("init schema: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		db.logger.Error("repo.schema.init_failed", "error", err)
		return err
	}
	db.logger.Info("repo.schema.ready", "dialect", db.dialect, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
