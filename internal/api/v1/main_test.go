package v1

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"taskman/internal/api/v1/handlers"
	"taskman/internal/auth"
	"taskman/internal/middleware"
	"taskman/internal/repository"
	"taskman/internal/testutil"
	"taskman/pkg/logger"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	db, cleanup, err := testutil.StartPostgres()
	if err != nil {
		log.Fatalf("start test database: %v", err)
	}
	testDB = db

	if err := repository.CreateTablesIfNotExist(testDB); err != nil {
		cleanup()
		log.Fatalf("create tables: %v", err)
	}

	code := m.Run()

	// Other test packages use the same TEST_DATABASE_URL database and may
	// still be running, so its tables stay. The dockertest container is
	// ours alone.
	if !testutil.SharedDatabase() {
		if err := repository.DropAllTables(testDB); err != nil {
			log.Printf("drop tables: %v", err)
		}
	}
	cleanup()
	os.Exit(code)
}

// newTestApp wires a full application against the shared test database,
// mirroring main but without the network listener.
func newTestApp() *fiber.App {
	return newTestAppWithLoginLimit(1000)
}

func newTestAppWithLoginLimit(max int) *fiber.App {
	logs := logger.NewNop()
	users := repository.NewUserStore(testDB)
	tasks := repository.NewTaskStore(testDB)
	tokens := auth.NewTokenManager([]byte("api-test-key"), 30*time.Minute)
	guard := auth.NewGuard(tokens, users)
	h := handlers.New(users, tasks, tokens, logs)

	app := fiber.New()
	app.Use(middleware.ErrorHandler(logs))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	loginLimiter := limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
	})
	RegisterRoutes(app, h, middleware.Auth(guard, logs), loginLimiter)
	return app
}

func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func uniqueUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// registerUser registers a fresh account over HTTP and returns its username.
func registerUser(t *testing.T, app *fiber.App, prefix, password string) string {
	t.Helper()

	username := uniqueUsername(prefix)
	resp := request(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected status %d but got %d", username, http.StatusCreated, resp.StatusCode)
	}
	resp.Body.Close()
	return username
}

// loginUser logs in over HTTP and returns the bearer token.
func loginUser(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()

	resp := request(t, app, "POST", "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected status %d but got %d", username, http.StatusOK, resp.StatusCode)
	}
	result := decode(t, resp)
	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("login %s: expected data field in response", username)
	}
	token, ok := data["token"].(string)
	if !ok || token == "" {
		t.Fatalf("login %s: expected token in response", username)
	}
	return token
}

// newAuthedUser registers and logs in a fresh user, returning its token.
func newAuthedUser(t *testing.T, app *fiber.App, prefix string) string {
	t.Helper()
	username := registerUser(t, app, prefix, "secret123")
	return loginUser(t, app, username, "secret123")
}
