package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func SetSteps(ctx context.Context, db *sql.DB, date string, steps int, now time.Time) error {
	date, err := NormalizeDate(date, now)
	if err != nil {
		return err
	}
	if steps < 0 {
		return invalid("steps", "must be >= 0")
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO step_counts(date, steps, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(date) DO UPDATE SET steps=excluded.steps, updated_at=excluded.updated_at
`, date, steps)
	if err != nil {
		return fmt.Errorf("set steps for %s: %w", date, err)
	}
	return nil
}

// StepsForDate returns 0 when nothing was recorded.
func StepsForDate(ctx context.Context, db *sql.DB, date string) (int, error) {
	var steps int
	err := db.QueryRowContext(ctx, `SELECT steps FROM step_counts WHERE date = ?`, date).Scan(&steps)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get steps for %s: %w", date, err)
	}
	return steps, nil
}
