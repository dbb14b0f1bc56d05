package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a completed analysis. The report and the requested
// analysis types are stored as JSONB.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (
	id, user_id, job_description, industry, analysis_types,
	provider, model, word_count, attempts, report, raw_key, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	report, err := marshalJSONB(analysis.Report)
	if err != nil {
		return err
	}
	types, err := marshalJSONB(analysis.AnalysisTypes)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		nullableString(analysis.JobDescription),
		nullableString(analysis.Industry),
		types,
		analysis.Provider,
		analysis.Model,
		analysis.WordCount,
		analysis.Attempts,
		report,
		nullableString(analysis.RawKey),
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_id, job_description, industry, analysis_types,
       provider, model, word_count, attempts, report, raw_key, created_at
FROM analyses
WHERE id = $1 AND user_id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, analysisID, userID)
	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return analysis, nil
}

// ListByUser returns a user's analyses ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	const query = `
SELECT id, user_id, job_description, industry, analysis_types,
       provider, model, word_count, attempts, report, raw_key, created_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, analysis)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var jobDescription, industry, rawKey sql.NullString
	var report, types sql.NullString
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&jobDescription,
		&industry,
		&types,
		&a.Provider,
		&a.Model,
		&a.WordCount,
		&a.Attempts,
		&report,
		&rawKey,
		&a.CreatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	a.JobDescription = jobDescription.String
	a.Industry = industry.String
	a.RawKey = rawKey.String
	if types.Valid && types.String != "" {
		if err := json.Unmarshal([]byte(types.String), &a.AnalysisTypes); err != nil {
			return Analysis{}, err
		}
	}
	if report.Valid && report.String != "" {
		var decoded Report
		if err := json.Unmarshal([]byte(report.String), &decoded); err != nil {
			return Analysis{}, err
		}
		a.Report = &decoded
	}
	return a, nil
}

func marshalJSONB(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
