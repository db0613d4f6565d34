package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CALSHARE_JWT_SECRET", testSecret)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Address)
		assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
		assert.Equal(t, 5, cfg.Coordinator.MaxAttempts)
		assert.Equal(t, 10*time.Millisecond, cfg.Coordinator.BaseBackoff)
		assert.Equal(t, 200, cfg.Calendar.MaxTasksPerCalendar)
		assert.False(t, cfg.Redis.Enabled())
	})

	t.Run("env_overrides", func(t *testing.T) {
		t.Setenv("CALSHARE_JWT_SECRET", testSecret)
		t.Setenv("CALSHARE_STORAGE_DRIVER", "memory")
		t.Setenv("CALSHARE_COORDINATOR_MAX_ATTEMPTS", "9")
		t.Setenv("CALSHARE_REDIS_ADDRESS", "redis:6379")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, StorageMemory, cfg.Storage.Driver)
		assert.Equal(t, 9, cfg.Coordinator.MaxAttempts)
		assert.True(t, cfg.Redis.Enabled())
	})

	t.Run("missing_secret", func(t *testing.T) {
		t.Setenv("CALSHARE_JWT_SECRET", "")
		t.Setenv("CALSHARE_AUTH_JWT_SECRET", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := Config{
		Storage:     StorageConfig{Driver: StorageMemory},
		Auth:        AuthConfig{JWTSecret: testSecret},
		Coordinator: CoordinatorConfig{MaxAttempts: 1},
	}
	assert.NoError(t, valid.Validate())

	badDriver := valid
	badDriver.Storage.Driver = "mongo"
	assert.Error(t, badDriver.Validate())

	noAttempts := valid
	noAttempts.Coordinator.MaxAttempts = 0
	assert.Error(t, noAttempts.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "cal", Database: "calshare", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=cal dbname=calshare sslmode=disable", cfg.DSN())

	cfg.Password = "secret"
	assert.Contains(t, cfg.DSN(), "password=secret")
}
