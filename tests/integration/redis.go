package integration

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/obra/backend/internal/infrastructure/cache"
	"github.com/obra/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedRedis    testcontainers.Container
	sharedRedisMu  sync.Mutex
	sharedRedisCfg config.RedisConfig
)

// NewTestRedis returns a client to the shared Redis container with an empty database
func NewTestRedis(t *testing.T) (*redis.Client, config.RedisConfig) {
	t.Helper()

	sharedRedisMu.Lock()
	defer sharedRedisMu.Unlock()

	ctx := context.Background()
	if sharedRedis == nil {
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		require.NoError(t, err, "Failed to start Redis container")

		host, err := container.Host(ctx)
		require.NoError(t, err)
		port, err := container.MappedPort(ctx, "6379/tcp")
		require.NoError(t, err)
		p, err := strconv.Atoi(port.Port())
		require.NoError(t, err)

		sharedRedis = container
		sharedRedisCfg = config.RedisConfig{Enabled: true, Host: host, Port: p}
	}

	client, err := cache.NewRedisClient(sharedRedisCfg)
	require.NoError(t, err, "Failed to connect to Redis")
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client, sharedRedisCfg
}
