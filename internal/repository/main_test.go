package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"taskman/internal/testutil"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	db, cleanup, err := testutil.StartPostgres()
	if err != nil {
		log.Fatalf("start test database: %v", err)
	}
	testDB = db

	if err := CreateTablesIfNotExist(testDB); err != nil {
		cleanup()
		log.Fatalf("create tables: %v", err)
	}

	code := m.Run()

	// Other test packages use the same TEST_DATABASE_URL database and may
	// still be running, so its tables stay. The dockertest container is
	// ours alone.
	if !testutil.SharedDatabase() {
		if err := DropAllTables(testDB); err != nil {
			log.Printf("drop tables: %v", err)
		}
	}
	cleanup()
	os.Exit(code)
}

// uniqueName derives a name unlikely to collide with other tests in the
// shared database.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
