//go:build integration

// Package testdb provides utilities for database integration tests.
//
// Each test runs in its own transaction, which is rolled back when the test
// completes, so tests can run in parallel against a shared schema:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        tasks := postgres.NewPostgresTaskStore(tx, nil)
//	        ...
//	    })
//	}
//
// The database is taken from DATABASE_URL (or OPSBOARD_TEST_DB_URL). When
// neither is set, a disposable PostgreSQL container is started with
// testcontainers and shared by every test in the package binary. Migrations
// are applied once per process.
package testdb
