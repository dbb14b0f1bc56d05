package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, userID string) (Usage, error) {
	return s.ensure(ctx, userID)
}

func (s *pgStore) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	return s.ensure(ctx, userID)
}

func (s *pgStore) Consume(ctx context.Context, userID string, kind Kind, n int) (Usage, error) {
	if n <= 0 {
		return s.ensure(ctx, userID)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	u, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}

	m := u.meter(kind)
	if m.Used+n > m.Limit {
		err = ErrLimitReached
		return Usage{}, err
	}
	u.addUsed(kind, n)
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET analyses_used = $1, enhancements_used = $2 WHERE user_id = $3`,
		u.Analyses.Used, u.Enhancements.Used, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Reset(ctx context.Context, userID string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	u, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	u = newUsage(u.Plan, time.Now().UTC())
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET analyses_used = 0, enhancements_used = 0, resets_at = $1 WHERE user_id = $2`,
		u.ResetsAt, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) SetPlan(ctx context.Context, userID, plan string) (Usage, error) {
	if _, ok := planLimits[plan]; !ok {
		return Usage{}, fmt.Errorf("unknown plan %q", plan)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	u, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	limits := planLimits[plan]
	u.Plan = plan
	u.Analyses.Limit = limits.analyses
	u.Enhancements.Limit = limits.enhancements
	if _, err = tx.ExecContext(ctx, `
UPDATE usage SET plan = $1, analyses_limit = $2, enhancements_limit = $3 WHERE user_id = $4`,
		plan, limits.analyses, limits.enhancements, userID); err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) ensure(ctx context.Context, userID string) (Usage, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	u, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Usage{}, err
	}
	if err = tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Usage, error) {
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT plan, analyses_limit, analyses_used, enhancements_limit, enhancements_used, resets_at
FROM usage WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&u.Plan, &u.Analyses.Limit, &u.Analyses.Used,
		&u.Enhancements.Limit, &u.Enhancements.Used, &u.ResetsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			u = newUsage(PlanFree, time.Now().UTC())
			if _, err = tx.ExecContext(ctx, `
INSERT INTO usage (user_id, plan, analyses_limit, analyses_used, enhancements_limit, enhancements_used, resets_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				userID, u.Plan, u.Analyses.Limit, u.Analyses.Used,
				u.Enhancements.Limit, u.Enhancements.Used, u.ResetsAt); err != nil {
				return Usage{}, err
			}
			return u, nil
		}
		return Usage{}, err
	}

	now := time.Now().UTC()
	if !now.Before(u.ResetsAt) {
		u = newUsage(u.Plan, now)
		if _, err = tx.ExecContext(ctx, `
UPDATE usage SET analyses_used = 0, enhancements_used = 0, resets_at = $1 WHERE user_id = $2`,
			u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
