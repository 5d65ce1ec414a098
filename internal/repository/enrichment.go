package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/uniformat-db/constants"
	"github.com/joseph-ayodele/uniformat-db/internal/entity"
)

type EnrichmentRepository interface {
	MergeExtraction(ctx context.Context, elements []entity.Element) ([]entity.MergeOutcome, error)
	FetchEnrichmentTargets(ctx context.Context) ([]entity.EnrichmentTarget, error)
	ListFragments(ctx context.Context) ([]entity.Fragment, error)
}

type enrichmentRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewEnrichmentRepository(db *DB, logger *slog.Logger) EnrichmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &enrichmentRepo{db: db, logger: logger}
}

// fragmentTable maps a kind to its table and text column.
func fragmentTable(kind constants.EnrichmentKind) (table, column string) {
	if kind == constants.Exclusion {
		return constants.TableExclusions, "exclusion_text"
	}
	return constants.TableInclusions, "inclusion_text"
}

// MergeExtraction replaces the inclusions/exclusions of every element whose code exists. Elements
// without a code are skipped; unknown codes get a LIKE diagnostic and change nothing.
func (r *enrichmentRepo) MergeExtraction(ctx context.Context, elements []entity.Element) ([]entity.MergeOutcome, error) {
	start := time.Now()
	outcomes := make([]entity.MergeOutcome, 0, len(elements))

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		for _, el := range elements {
			out, err := r.mergeOne(ctx, tx, el)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, out)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("repo.merge.failed", "elements", len(elements), "error", err)
		return nil, dbErr("merge extraction", err)
	}

	for _, o := range outcomes {
		switch o.Status {
		case constants.MergeMatched:
			r.logger.Debug("repo.merge.matched", "level3_code", o.Level3Code, "code_id", o.CodeID,
				"inclusions", o.Inclusions, "exclusions", o.Exclusions)
		case constants.MergeUnmatched:
			r.logger.Warn("repo.merge.unmatched", "level3_code", o.Level3Code, "len", len(o.Level3Code),
				"candidates", o.Candidates)
		case constants.MergeSkipped:
			r.logger.Warn("repo.merge.skipped", "reason", "missing level3_code")
		}
	}
	r.logger.Info("repo.merge.ok", "elements", len(elements), "elapsed_ms", time.Since(start).Milliseconds())
	return outcomes, nil
}

func (r *enrichmentRepo) mergeOne(ctx context.Context, tx *sql.Tx, el entity.Element) (entity.MergeOutcome, error) {
	code := strings.TrimSpace(el.Level3Code)
	out := entity.MergeOutcome{Level3Code: code}
	if code == "" {
		out.Status = constants.MergeSkipped
		return out, nil
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		r.db.rebind("SELECT id FROM uniformat_codes WHERE level3_code = ? ORDER BY id LIMIT 1"), code).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cands, err := r.candidates(ctx, tx, code)
		if err != nil {
			return out, err
		}
		out.Status = constants.MergeUnmatched
		out.Candidates = cands
		return out, nil
	case err != nil:
		return out, fmt.Errorf("lookup %s: %w", code, err)
	}

	out.Status = constants.MergeMatched
	out.CodeID = id
	if out.Inclusions, err = r.replaceFragments(ctx, tx, id, constants.Inclusion, el.Inclusions); err != nil {
		return out, err
	}
	if out.Exclusions, err = r.replaceFragments(ctx, tx, id, constants.Exclusion, el.Exclusions); err != nil {
		return out, err
	}
	return out, nil
}

// replaceFragments deletes a code's rows of one kind and inserts the trimmed, non-blank items.
func (r *enrichmentRepo) replaceFragments(ctx context.Context, tx *sql.Tx, codeID int64, kind constants.EnrichmentKind, items []string) (int, error) {
	table, column := fragmentTable(kind)
	if _, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM "+table+" WHERE uniformat_code_id = ?"), codeID); err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	insert := r.db.rebind("INSERT INTO " + table + " (uniformat_code_id, " + column + ") VALUES (?, ?)")
	n := 0
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, codeID, item); err != nil {
			return n, fmt.Errorf("insert %s: %w", table, err)
		}
		n++
	}
	return n, nil
}

// candidates is diagnostic only: spaces in the code become wildcards.
func (r *enrichmentRepo) candidates(ctx context.Context, tx *sql.Tx, code string) ([]entity.Candidate, error) {
	pattern := "%" + strings.ReplaceAll(code, " ", "%") + "%"
	rows, err := tx.QueryContext(ctx,
		r.db.rebind(fmt.Sprintf("SELECT level3_code, LENGTH(level3_code) FROM uniformat_codes WHERE level3_code LIKE ? LIMIT %d",
			constants.FuzzyCandidateLimit)), pattern)
	if err != nil {
		return nil, fmt.Errorf("fuzzy lookup %s: %w", code, err)
	}
	defer rows.Close()

	var out []entity.Candidate
	for rows.Next() {
		var c entity.Candidate
		if err := rows.Scan(&c.Level3Code, &c.Length); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type anchor struct {
	id          int64
	code        string
	name        sql.NullString
	description sql.NullString
}

// FetchEnrichmentTargets returns one target per distinct level3_code, read from the lowest-id row
// carrying that code, together with that row's inclusions and exclusions.
func (r *enrichmentRepo) FetchEnrichmentTargets(ctx context.Context) ([]entity.EnrichmentTarget, error) {
	start := time.Now()
	var out []entity.EnrichmentTarget
	err := r.db.withConn(ctx, func(conn *sql.Conn) error {
		anchors, err := r.anchors(ctx, conn)
		if err != nil {
			return err
		}
		out = make([]entity.EnrichmentTarget, 0, len(anchors))
		for _, a := range anchors {
			t := entity.EnrichmentTarget{
				Level3Code:         a.code,
				Level3Name:         a.name.String,
				CurrentDescription: a.description.String,
			}
			if t.Inclusions, err = r.fragmentTexts(ctx, conn, a.id, constants.Inclusion); err != nil {
				return err
			}
			if t.Exclusions, err = r.fragmentTexts(ctx, conn, a.id, constants.Exclusion); err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("repo.targets.failed", "error", err)
		return nil, dbErr("fetch enrichment targets", err)
	}
	r.logger.Info("repo.targets.ok", "targets", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (r *enrichmentRepo) anchors(ctx context.Context, conn *sql.Conn) ([]anchor, error) {
	rows, err := conn.QueryContext(ctx, `SELECT c.id, c.level3_code, c.level3_name, c.description
		FROM uniformat_codes c
		JOIN (SELECT MIN(id) AS id FROM uniformat_codes WHERE level3_code IS NOT NULL GROUP BY level3_code) a
		ON a.id = c.id
		ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []anchor
	for rows.Next() {
		var a anchor
		if err := rows.Scan(&a.id, &a.code, &a.name, &a.description); err != nil {
			return nil, err
		}
		a.code = strings.TrimSpace(a.code)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *enrichmentRepo) fragmentTexts(ctx context.Context, conn *sql.Conn, codeID int64, kind constants.EnrichmentKind) ([]string, error) {
	table, column := fragmentTable(kind)
	rows, err := conn.QueryContext(ctx,
		r.db.rebind("SELECT "+column+" FROM "+table+" WHERE uniformat_code_id = ? ORDER BY id"), codeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s sql.NullString
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s.String)
	}
	return out, rows.Err()
}

// ListFragments returns every inclusion then every exclusion, with the owning code when it still exists.
func (r *enrichmentRepo) ListFragments(ctx context.Context) ([]entity.Fragment, error) {
	var out []entity.Fragment
	err := r.db.withConn(ctx, func(conn *sql.Conn) error {
		for _, kind := range []constants.EnrichmentKind{constants.Inclusion, constants.Exclusion} {
			table, column := fragmentTable(kind)
			rows, err := conn.QueryContext(ctx, `SELECT f.id, f.uniformat_code_id, c.level3_code, f.`+column+`
				FROM `+table+` f LEFT JOIN uniformat_codes c ON c.id = f.uniformat_code_id
				ORDER BY f.id`)
			if err != nil {
				return err
			}
			for rows.Next() {
				var (
					f      entity.Fragment
					codeID sql.NullInt64
					code   sql.NullString
					text   sql.NullString
				)
				if err := rows.Scan(&f.ID, &codeID, &code, &text); err != nil {
					rows.Close()
					return err
				}
				f.CodeID = codeID.Int64
				f.Level3Code = code.String
				f.Kind = kind
				f.Text = text.String
				out = append(out, f)
			}
			err = rows.Err()
			rows.Close()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("list fragments", err)
	}
	return out, nil
}
