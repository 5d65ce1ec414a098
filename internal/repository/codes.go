package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/common"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

type CodeRepository interface {
	BulkLoadCodes(ctx context.Context, rows []entity.CodeRow) (int, error)
	CountCodes(ctx context.Context) (int, error)
	ListCodes(ctx context.Context) ([]entity.Code, error)
	UpdateDescription(ctx context.Context, level3Code, description string) (int64, error)
}

type codeRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewCodeRepository(db *DB, logger *slog.Logger) CodeRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &codeRepo{db: db, logger: logger}
}

const insertCodeSQL = `INSERT INTO uniformat_codes
	(type, level1_code, level1_name, level2_code, level2_name, level3_code, level3_name, level4_code, level4_name)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// BulkLoadCodes clears uniformat_codes and inserts one row per input row in a single transaction.
// Inclusion/exclusion rows are left in place and lose their anchor.
func (r *codeRepo) BulkLoadCodes(ctx context.Context, rows []entity.CodeRow) (int, error) {
	start := time.Now()
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+constants.TableCodes); err != nil {
			return fmt.Errorf("clear codes: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, r.db.rebind(insertCodeSQL))
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range rows {
			_, err := stmt.ExecContext(ctx,
				nullable(row.Type),
				nullable(row.Level1Code), nullable(row.Level1Name),
				nullable(row.Level2Code), nullable(row.Level2Name),
				nullable(row.Level3Code), nullable(row.Level3Name),
				nullable(row.Level4Code), nullable(row.Level4Name),
			)
			if err != nil {
				return fmt.Errorf("insert code row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("repo.codes.bulk_load_failed", "rows", len(rows), "error", err)
		return 0, dbErr("bulk load codes", err)
	}
	r.logger.Info("repo.codes.bulk_load_ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return len(rows), nil
}

func (r *codeRepo) CountCodes(ctx context.Context) (int, error) {
	var n int
	err := r.db.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+constants.TableCodes).Scan(&n)
	})
	if err != nil {
		return 0, dbErr("count codes", err)
	}
	return n, nil
}

// ListCodes returns every code row ordered by id.
func (r *codeRepo) ListCodes(ctx context.Context) ([]entity.Code, error) {
	var out []entity.Code
	err := r.db.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, type, level1_code, level1_name, level2_code, level2_name,
			level3_code, level3_name, level4_code, level4_name, description, notes
			FROM uniformat_codes ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				c    entity.Code
				cols [11]sql.NullString
			)
			if err := rows.Scan(&c.ID, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4],
				&cols[5], &cols[6], &cols[7], &cols[8], &cols[9], &cols[10]); err != nil {
				return err
			}
			c.Type = cols[0].String
			c.Level1Code, c.Level1Name = cols[1].String, cols[2].String
			c.Level2Code, c.Level2Name = cols[3].String, cols[4].String
			c.Level3Code, c.Level3Name = cols[5].String, cols[6].String
			c.Level4Code, c.Level4Name = cols[7].String, cols[8].String
			c.Description = ptr(cols[9])
			c.Notes = ptr(cols[10])
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, dbErr("list codes", err)
	}
	return out, nil
}

// UpdateDescription sets description on every row whose level3_code equals the given code and
// returns how many rows changed. Zero means the code is unknown.
func (r *codeRepo) UpdateDescription(ctx context.Context, level3Code, description string) (int64, error) {
	level3Code = strings.TrimSpace(level3Code)
	if level3Code == "" {
		return 0, common.NewAppError("INVALID_INPUT", "level3 code is required", common.ErrInvalidInput)
	}

	var affected int64
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.db.rebind("UPDATE uniformat_codes SET description = ? WHERE level3_code = ?"),
			description, level3Code)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("repo.codes.update_description_failed", "level3_code", level3Code, "error", err)
		return 0, dbErr("update description "+level3Code, err)
	}
	r.logger.Debug("repo.codes.update_description_ok", "level3_code", level3Code, "rows", affected, "preview", preview(description, 100))
	return affected, nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// dbErr tags a storage failure so callers can match common.ErrDatabase.
func dbErr(op string, err error) error {
	return common.NewAppError("DATABASE_ERROR", op, fmt.Errorf("%w: %w", common.ErrDatabase, err))
}
