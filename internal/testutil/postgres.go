// Package testutil boots throwaway infrastructure for integration tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/ory/dockertest/v3"

	"taskman/configs"

	_ "github.com/lib/pq"
)

// SharedDatabase reports whether tests run against an externally provided
// database. Every test package connects to that same database, so teardown
// must not drop tables while another package may still be running; the
// dockertest path gives each package its own container.
func SharedDatabase() bool {
	return os.Getenv("TEST_DATABASE_URL") != ""
}

// containerDatabase is the database provisioned inside the dockertest
// container. DB_NAME_TEST keeps it in step with the application config.
func containerDatabase() string {
	return configs.LoadConfig().DBNameTest
}

// StartPostgres returns a database for integration tests plus a cleanup
// function. With TEST_DATABASE_URL set it connects there (CI runners with a
// provisioned database); otherwise it starts a disposable Postgres container
// through dockertest. The container self-destructs after three minutes even
// if cleanup never runs.
func StartPostgres() (*sql.DB, func(), error) {
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		db, err := sql.Open("postgres", url)
		if err != nil {
			return nil, nil, fmt.Errorf("open test database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping test database: %w", err)
		}
		return db, func() { db.Close() }, nil
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, fmt.Errorf("connect to docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute

	dbName := containerDatabase()
	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=" + dbName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("start postgres container: %w", err)
	}
	resource.Expire(180)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s/%s?sslmode=disable",
		resource.GetHostPort("5432/tcp"), dbName)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var err error
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		return db.Ping()
	}); err != nil {
		pool.Purge(resource)
		return nil, nil, fmt.Errorf("wait for postgres: %w", err)
	}

	cleanup := func() {
		db.Close()
		pool.Purge(resource)
	}
	return db, cleanup, nil
}
