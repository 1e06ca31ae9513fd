package database

import (
	"context"
	"errors"
	"time"

	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

func (db *databaseConnection) Record(ctx context.Context, slug git.Slug,
	status ci.BuildStatus, checkedAt time.Time) error {
	if !slug.Valid() {
		return errors.New("invalid slug")
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO checks (
			repo_slug, status, checked_at
		) VALUES (?, ?, ?)`,
		string(slug), status.String(), checkedAt.UTC())
	return err
}

func (db *databaseConnection) Latest(ctx context.Context, limit int) ([]Check, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT repo_slug, status, checked_at FROM checks
		ORDER BY checked_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var (
			slug, status string
			checkedAt    time.Time
		)
		if err := rows.Scan(&slug, &status, &checkedAt); err != nil {
			return nil, err
		}
		checks = append(checks, Check{
			Slug:      git.Slug(slug),
			Status:    parseStatus(status),
			CheckedAt: checkedAt,
		})
	}

	return checks, rows.Err()
}

func parseStatus(s string) ci.BuildStatus {
	switch s {
	case ci.StatusPassing.String():
		return ci.StatusPassing
	case ci.StatusFailing.String():
		return ci.StatusFailing
	default:
		return ci.StatusUnknown
	}
}
