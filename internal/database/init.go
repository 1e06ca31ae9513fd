package database

import (
	"context"
	"database/sql"
	"time"

	// for database/sql
	_ "github.com/mattn/go-sqlite3"

	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

type databaseConnection struct {
	conn *sql.DB
}

// Check is one recorded status check
type Check struct {
	Slug      git.Slug
	Status    ci.BuildStatus
	CheckedAt time.Time
}

// Service is the main interface for database package
type Service interface {
	Initialize() error
	Close()

	Record(ctx context.Context, slug git.Slug, status ci.BuildStatus, checkedAt time.Time) error
	Latest(ctx context.Context, limit int) ([]Check, error)
}

// NewDatabase create a new connection to database
func NewDatabase(dbURI string) (Service, error) {
	conn, err := sql.Open("sqlite3", dbURI)
	if err != nil {
		return nil, err
	}

	return &databaseConnection{
		conn: conn,
	}, nil
}

func (dbc *databaseConnection) Initialize() error {
	_, err := dbc.conn.Exec(`
		CREATE TABLE IF NOT EXISTS checks(
			id INTEGER PRIMARY KEY,
			repo_slug VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL,
			checked_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = dbc.conn.Exec(`
		CREATE INDEX IF NOT EXISTS checks_checked_at ON checks(checked_at);
	`)
	return err
}

func (dbc *databaseConnection) Close() {
	dbc.conn.Close()
}
