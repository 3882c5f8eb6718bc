//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// E2ETestSuite boots a PostgreSQL container and the application container
// built from the repository Dockerfile (image tiktok-league-e2e:test), then
// drives the HTTP API from the outside. Migrations run inside the app
// container on startup, so the suite exercises the real migration path.
type E2ETestSuite struct {
	suite.Suite
	ctx          context.Context
	pgContainer  *postgres.PostgresContainer
	appContainer testcontainers.Container
	db           *gorm.DB
	baseURL      string
	httpClient   *http.Client
}

func (s *E2ETestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(s.T(), err, "failed to start PostgreSQL container")
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "failed to get connection string")

	// Direct connection for assertions; the app owns the schema.
	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err, "failed to connect to database")
	s.db = db

	// The app container reaches PostgreSQL over the container network,
	// not through the mapped host port.
	dbHost, err := pgContainer.ContainerIP(s.ctx)
	require.NoError(s.T(), err, "failed to get PostgreSQL container IP")

	appContainer, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "tiktok-league-e2e:test",
			ExposedPorts: []string{"8080/tcp"},
			Env: map[string]string{
				"DB_HOST":                dbHost,
				"DB_PORT":                "5432",
				"DB_USER":                "testuser",
				"DB_PASSWORD":            "testpass",
				"DB_NAME":                "testdb",
				"DB_SSLMODE":             "disable",
				"DB_TIMEZONE":            "UTC",
				"DB_RETRY_MAX_ATTEMPTS":  "5",
				"DB_RETRY_INITIAL_DELAY": "1s",
				"DB_RETRY_MAX_DELAY":     "30s",
				"DB_RETRY_MULTIPLIER":    "2.0",
				"SERVER_HOST":            "",
				"SERVER_PORT":            ":8080",
				"SERVER_READ_TIMEOUT":    "10s",
				"SERVER_WRITE_TIMEOUT":   "10s",
				"SERVER_IDLE_TIMEOUT":    "120s",
				"GIN_MODE":               "release",
				"LOG_LEVEL":              "info",
				"LOG_FORMAT":             "json",
				"LOG_OUTPUT":             "stdout",
				"MIGRATIONS_PATH":        "migrations",
			},
			WaitingFor: wait.ForHTTP("/health").
				WithPort("8080/tcp").
				WithStartupTimeout(120 * time.Second).
				WithPollInterval(2 * time.Second),
		},
		Started: true,
	})
	require.NoError(s.T(), err, "failed to start application container")
	s.appContainer = appContainer

	host, err := appContainer.Host(s.ctx)
	require.NoError(s.T(), err, "failed to get container host")
	port, err := appContainer.MappedPort(s.ctx, "8080")
	require.NoError(s.T(), err, "failed to get container port")

	s.baseURL = fmt.Sprintf("http://%s:%s", host, port.Port())
	s.httpClient = &http.Client{Timeout: 30 * time.Second}
}

func (s *E2ETestSuite) TearDownSuite() {
	if s.appContainer != nil {
		_ = s.appContainer.Terminate(s.ctx)
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *E2ETestSuite) SetupTest() {
	s.cleanDatabase()
}

// cleanDatabase truncates all domain tables between tests. Order follows
// the foreign keys.
func (s *E2ETestSuite) cleanDatabase() {
	tables := []string{
		"standings",
		"matches",
		"team_league_assignments",
		"teams",
		"leagues",
		"divisions",
		"seasons",
	}
	for _, table := range tables {
		err := s.db.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error
		require.NoError(s.T(), err, "failed to truncate %s", table)
	}
}

func (s *E2ETestSuite) postJSON(path string, payload any) (*http.Response, []byte) {
	body, err := json.Marshal(payload)
	require.NoError(s.T(), err)

	resp, err := s.httpClient.Post(s.baseURL+path, "application/json", bytes.NewBuffer(body))
	require.NoError(s.T(), err, "POST %s failed", path)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, data
}

func (s *E2ETestSuite) getJSON(path string) (*http.Response, []byte) {
	resp, err := s.httpClient.Get(s.baseURL + path)
	require.NoError(s.T(), err, "GET %s failed", path)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, data
}

func TestE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
