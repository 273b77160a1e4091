package cache

import (
	"context"
	"strconv"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-enrolment-api/pkg/config"
)

func TestNewRedisConnects(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewRedis(context.Background(), config.RedisConfig{Host: server.Host(), Port: mustPort(t, server.Port())})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	port := mustPort(t, server.Port())
	server.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: port})
	require.Error(t, err)
}

func mustPort(t *testing.T, raw string) int {
	t.Helper()
	port, err := strconv.Atoi(raw)
	require.NoError(t, err)
	return port
}
