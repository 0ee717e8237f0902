package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hondanabooks/hondana/pkg/config"
	"github.com/hondanabooks/hondana/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig creates a config with a temp file database. Using a file
// instead of :memory: ensures multiple connections share the same database,
// which is required to exercise lock contention.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(tmpDir, "test.db")
	return cfg
}

// TestConcurrentWrites verifies that concurrent writes complete without
// "database is locked" errors leaking through the retry connector.
func TestConcurrentWrites(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	const numWorkers = 10
	const writesPerWorker = 20

	var wg sync.WaitGroup
	var successCount atomic.Int32
	errs := make(chan error, numWorkers*writesPerWorker)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < writesPerWorker; i++ {
				_, err := db.Exec(
					"INSERT INTO books (title, author, summary, publish_year, isbn) VALUES (?, ?, ?, ?, ?)",
					fmt.Sprintf("Title %d-%d", workerID, i),
					"Author",
					"Summary",
					2020,
					fmt.Sprintf("978%03d%07d", workerID, i),
				)
				if err != nil {
					errs <- fmt.Errorf("worker %d write %d: %w", workerID, i, err)
				} else {
					successCount.Add(1)
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)

	var allErrors []error
	for err := range errs {
		allErrors = append(allErrors, err)
	}

	assert.Empty(t, allErrors, "concurrent writes should not produce errors")
	assert.Equal(t, int32(numWorkers*writesPerWorker), successCount.Load())

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, numWorkers*writesPerWorker, count)
}

// TestConcurrentSameISBN verifies that when many concurrent inserts race on
// the same ISBN, the unique index lets exactly one through and rejects the
// rest with a constraint error rather than a busy error.
func TestConcurrentSameISBN(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	const numWorkers = 10

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32
	errs := make(chan error, numWorkers)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			_, err := db.Exec(
				"INSERT INTO books (title, author, summary, publish_year, isbn) VALUES (?, ?, ?, ?, ?)",
				fmt.Sprintf("Race %d", workerID),
				"Author",
				"Summary",
				2020,
				"9781234567897",
			)
			switch {
			case err == nil:
				successCount.Add(1)
			case strings.Contains(err.Error(), "UNIQUE constraint"):
				conflictCount.Add(1)
			default:
				errs <- err
			}
		}(w)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	assert.Equal(t, int32(1), successCount.Load(), "exactly one insert should win")
	assert.Equal(t, int32(numWorkers-1), conflictCount.Load())

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM books WHERE isbn = ?", "9781234567897").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
