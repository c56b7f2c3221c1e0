package repository

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tarotdesk/share-server-go/internal/database"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and resets
// the share_links table. Tests that need Postgres are skipped when the
// variable is unset.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}

	db, err := database.Connect(url)
	require.NoError(t, err)

	_, err = db.Exec(`TRUNCATE share_links`)
	require.NoError(t, err)

	return db
}
