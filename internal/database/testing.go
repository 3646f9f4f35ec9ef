package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/pitwall-picks/internal/config"
)

// TestDatabaseEnv names the variable holding the integration test config path.
const TestDatabaseEnv = "PITWALL_TEST_CONFIG"

// SetupTestDB connects to the database named by PITWALL_TEST_CONFIG and applies
// the schema. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestDatabaseEnv)
	if path == "" {
		t.Skip("Integration test - requires database setup (set " + TestDatabaseEnv + ")")
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
