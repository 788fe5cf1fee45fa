package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"regulonet/domain/core"
	"regulonet/domain/run"
)

// ResultsRepository persists finished runs: confirmed interactions,
// tissue-specific sets and the activity matrices. It is a ResultsSink; the
// pipeline hands it the result as an opaque payload.
type ResultsRepository struct {
	db *sqlx.DB
}

// NewResultsRepository creates a results repository.
func NewResultsRepository(db *sqlx.DB) *ResultsRepository {
	return &ResultsRepository{db: db}
}

// Connect opens a postgres connection pool from a DSN.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the result tables if they do not exist.
func (r *ResultsRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS regulon_runs (
			run_id TEXT PRIMARY KEY,
			tissues INT NOT NULL,
			completed INT NOT NULL,
			degenerate INT NOT NULL,
			skipped INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS confirmed_interactions (
			run_id TEXT NOT NULL REFERENCES regulon_runs(run_id),
			tissue TEXT NOT NULL,
			tf TEXT NOT NULL,
			target TEXT NOT NULL,
			interaction_key TEXT NOT NULL,
			tissue_specific BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, tissue, interaction_key)
		);
		CREATE TABLE IF NOT EXISTS activity_scores (
			run_id TEXT NOT NULL REFERENCES regulon_runs(run_id),
			tissue TEXT NOT NULL,
			cell_id TEXT NOT NULL,
			tf TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, tissue, cell_id, tf)
		);`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating result tables: %w", err)
	}
	return nil
}

// PersistRun implements ports.ResultsSink.
func (r *ResultsRepository) PersistRun(ctx context.Context, result *run.Result) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO regulon_runs (run_id, tissues, completed, degenerate, skipped)
		 VALUES ($1, $2, $3, $4, $5)`,
		result.RunID.String(),
		result.Summary.Tissues,
		result.Summary.Completed,
		result.Summary.Degenerate,
		result.Summary.Skipped,
	)
	if err != nil {
		return fmt.Errorf("inserting run row: %w", err)
	}

	tissues := make([]string, 0, len(result.Confirmed))
	for tissue := range result.Confirmed {
		tissues = append(tissues, tissue.String())
	}
	sort.Strings(tissues)

	interactionStmt, err := tx.PreparexContext(ctx,
		`INSERT INTO confirmed_interactions (run_id, tissue, tf, target, interaction_key, tissue_specific)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("preparing interaction insert: %w", err)
	}
	defer interactionStmt.Close()

	for _, tissue := range tissues {
		t := core.Tissue(tissue)
		unique := result.Unique[t].Interactions
		for _, it := range result.Confirmed[t] {
			if _, err := interactionStmt.ExecContext(ctx,
				result.RunID.String(), tissue, it.TF, it.Target, it.Key(), unique.Contains(it.Key()),
			); err != nil {
				return fmt.Errorf("inserting interaction %s/%s: %w", tissue, it.Key(), err)
			}
		}
	}

	scoreStmt, err := tx.PreparexContext(ctx,
		`INSERT INTO activity_scores (run_id, tissue, cell_id, tf, score)
		 VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return fmt.Errorf("preparing score insert: %w", err)
	}
	defer scoreStmt.Close()

	for _, tissue := range tissues {
		matrix := result.Activity[core.Tissue(tissue)]
		if matrix == nil {
			continue
		}
		for c, cell := range matrix.Cells {
			for i, tf := range matrix.TFs {
				if _, err := scoreStmt.ExecContext(ctx,
					result.RunID.String(), tissue, cell, tf, matrix.Scores[c][i],
				); err != nil {
					return fmt.Errorf("inserting score %s/%s/%s: %w", tissue, cell, tf, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", result.RunID, err)
	}
	return nil
}
