package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cep-formacion/planner-api/pkg/config"
)

func TestNewRedisDisabled(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{Enabled: false, Host: "localhost", Port: 6379})
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrDisabled)
}
