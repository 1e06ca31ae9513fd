package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleous/cistatus/internal/database"
	"github.com/circleous/cistatus/pkg/ci"
	"github.com/circleous/cistatus/pkg/git"
)

func TestRecordLatest(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Initialize())
	// idempotent
	require.NoError(t, db.Initialize())

	base := time.Date(2021, 11, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Record(ctx, "circleous/cistatus", ci.StatusPassing, base))
	require.NoError(t, db.Record(ctx, "fork/project", ci.StatusFailing, base.Add(time.Minute)))
	require.NoError(t, db.Record(ctx, "fork/project", ci.StatusUnknown, base.Add(2*time.Minute)))

	assert.Error(t, db.Record(ctx, "not-a-slug", ci.StatusPassing, base))

	checks, err := db.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, checks, 2)

	assert.Equal(t, git.Slug("fork/project"), checks[0].Slug)
	assert.Equal(t, ci.StatusUnknown, checks[0].Status)
	assert.True(t, base.Add(2*time.Minute).Equal(checks[0].CheckedAt))
	assert.Equal(t, ci.StatusFailing, checks[1].Status)

	checks, err = db.Latest(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, checks, 3)
	assert.Equal(t, git.Slug("circleous/cistatus"), checks[2].Slug)
	assert.Equal(t, ci.StatusPassing, checks[2].Status)
}
