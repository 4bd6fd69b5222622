// Package integration runs the receipt stack against real PostgreSQL and
// Redis instances started with testcontainers.
package integration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/obra/backend/internal/infrastructure/config"
	"github.com/obra/backend/internal/infrastructure/logger"
	"github.com/obra/backend/internal/infrastructure/migration"
	"github.com/obra/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

var (
	// Shared container for all tests in the package
	sharedPostgres   *tcpostgres.PostgresContainer
	sharedPostgresMu sync.Mutex
	sharedDBConfig   config.DatabaseConfig
)

// TestDB is a migrated PostgreSQL database
type TestDB struct {
	*persistence.Database
	Config config.DatabaseConfig
	t      *testing.T
}

// NewTestDB connects to the shared PostgreSQL container, starting and
// migrating it on first use. Tables are truncated before returning.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedPostgresMu.Lock()
	defer sharedPostgresMu.Unlock()

	ctx := context.Background()
	if sharedPostgres == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("obra_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start PostgreSQL container")

		host, err := container.Host(ctx)
		require.NoError(t, err)
		port, err := container.MappedPort(ctx, "5432/tcp")
		require.NoError(t, err)

		sharedPostgres = container
		sharedDBConfig = config.DatabaseConfig{
			Driver:          persistence.DriverPostgres,
			Host:            host,
			Port:            port.Int(),
			User:            "postgres",
			Password:        "postgres",
			DBName:          "obra_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5,
			ConnMaxIdleTime: 1,
		}

		db := connect(t, sharedDBConfig)
		sqlDB, err := db.DB.DB()
		require.NoError(t, err)
		m, err := migration.NewEmbedded(sqlDB, zap.NewNop())
		require.NoError(t, err, "Failed to create migrator")
		require.NoError(t, m.Up(), "Failed to run migrations")
		require.NoError(t, m.Close())
	}

	tdb := &TestDB{Database: connect(t, sharedDBConfig), Config: sharedDBConfig, t: t}
	t.Cleanup(func() { _ = tdb.Close() })
	tdb.CleanTables()
	return tdb
}

func connect(t *testing.T, cfg config.DatabaseConfig) *persistence.Database {
	t.Helper()

	var opts []persistence.Option
	// TEST_DB_DEBUG logs every statement
	if os.Getenv("TEST_DB_DEBUG") != "" {
		opts = append(opts, persistence.WithLogger(
			logger.NewGormLogger(zap.NewExample(), logger.MapGormLogLevel("debug"), logger.WithSQL(true))))
	}
	db, err := persistence.NewDatabase(&cfg, opts...)
	require.NoError(t, err, "Failed to connect to database")
	return db
}

// CleanTables truncates every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+table+" CASCADE").Error)
	}
}

// CleanupContainers terminates the shared containers. Call it from TestMain.
func CleanupContainers() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sharedPostgresMu.Lock()
	if sharedPostgres != nil {
		_ = sharedPostgres.Terminate(ctx)
		sharedPostgres = nil
	}
	sharedPostgresMu.Unlock()

	sharedRedisMu.Lock()
	if sharedRedis != nil {
		_ = sharedRedis.Terminate(ctx)
		sharedRedis = nil
	}
	sharedRedisMu.Unlock()
}
