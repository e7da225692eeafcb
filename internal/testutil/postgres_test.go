package testutil

import "testing"

func TestSharedDatabase(t *testing.T) {
	t.Setenv("TEST_DATABASE_URL", "postgres://ci:ci@localhost:5432/ci?sslmode=disable")
	if !SharedDatabase() {
		t.Fatal("expected a shared database while TEST_DATABASE_URL is set")
	}

	t.Setenv("TEST_DATABASE_URL", "")
	if SharedDatabase() {
		t.Fatal("expected a per-package database while TEST_DATABASE_URL is empty")
	}
}

func TestContainerDatabaseHonorsEnv(t *testing.T) {
	t.Setenv("DB_NAME_TEST", "taskman_parity")
	if got := containerDatabase(); got != "taskman_parity" {
		t.Fatalf("containerDatabase() = %q, want %q", got, "taskman_parity")
	}

	t.Setenv("DB_NAME_TEST", "")
	if got := containerDatabase(); got != "taskman_test" {
		t.Fatalf("containerDatabase() = %q, want the taskman_test default", got)
	}
}
