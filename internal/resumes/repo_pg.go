package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"cvstudio-backend/internal/cv"
)

// PGRepo implements Repo using Postgres. The document is stored as JSONB.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, title, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	data, err := json.Marshal(resume.Data)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Title,
		string(data),
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	const query = `
SELECT id, user_id, title, data, created_at, updated_at
FROM resumes
WHERE id = $1 AND user_id = $2
LIMIT 1`
	var resume Resume
	var data string
	err := r.DB.QueryRowContext(ctx, query, resumeID, userID).Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&data,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if err := json.Unmarshal([]byte(data), &resume.Data); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	const query = `
SELECT id, user_id, title, data, created_at, updated_at
FROM resumes
WHERE user_id = $1
ORDER BY updated_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		var resume Resume
		var data string
		if err := rows.Scan(
			&resume.ID,
			&resume.UserID,
			&resume.Title,
			&data,
			&resume.CreatedAt,
			&resume.UpdatedAt,
		); err != nil {
			return nil, err
		}
		var doc cv.Document
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, err
		}
		resume.Data = doc
		out = append(out, resume)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, resume Resume) error {
	const query = `
UPDATE resumes SET title = $1, data = $2, updated_at = now()
WHERE id = $3 AND user_id = $4`
	data, err := json.Marshal(resume.Data)
	if err != nil {
		return err
	}
	result, err := r.DB.ExecContext(ctx, query, resume.Title, string(data), resume.ID, resume.UserID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, resumeID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, resumeID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
