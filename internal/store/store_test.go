// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"telemart/internal/database"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "telemart")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "telemart")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by telegram id. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, telegramIDs ...int64) {
	t.Helper()
	for _, id := range telegramIDs {
		db.Exec("DELETE FROM users WHERE telegram_id = $1", id)
	}
}

// cleanCategories removes test categories by name. Products must be
// gone first; the category FK does not cascade. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM categories WHERE name = $1", name)
	}
}

// cleanProducts removes test products by name. Deleting a product
// cascades its reviews. Call in t.Cleanup().
func cleanProducts(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM products WHERE name = $1", name)
	}
}

// cleanOrdersByTelegramID removes every order placed by the users with
// the given telegram ids. Reviews referencing those orders must be gone
// first. Call in t.Cleanup().
func cleanOrdersByTelegramID(t *testing.T, db *sql.DB, telegramIDs ...int64) {
	t.Helper()
	for _, id := range telegramIDs {
		db.Exec(`DELETE FROM orders WHERE user_id IN (SELECT id FROM users WHERE telegram_id = $1)`, id)
	}
}
