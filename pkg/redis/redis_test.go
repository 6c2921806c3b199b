package redis_test

import (
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/nabi-crm/nabi/pkg/redis"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("invalid connection URL", func(t *testing.T) {
		t.Parallel()

		client, err := redis.Connect(t.Context(), redis.Config{
			ConnectionURL:  "not-a-redis-url",
			ConnectTimeout: time.Second,
		})
		assert.Nil(t, client)
		assert.ErrorIs(t, err, redis.ErrFailedToParseURL)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	// Port 1 is never a redis server; the probe must surface the failure.
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	err := redis.Healthcheck(client)(t.Context())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}
