package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearFeedlotEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "FEEDLOT_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearFeedlotEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "feedlot-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "feedlot", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "memory", cfg.Lock.Backend)
		assert.Equal(t, 30*time.Second, cfg.Lock.TTL)
		assert.Equal(t, "memory", cfg.Storage.Backend)
		assert.Equal(t, "0 2 * * *", cfg.Scheduler.ReconcileCron)
		assert.Equal(t, 4, cfg.Scheduler.BatchConcurrency)
		assert.Equal(t, int32(2), cfg.Engine.RoundingPlaces)
		assert.Equal(t, 30, cfg.Engine.Match.MinScore)
		assert.Equal(t, 80, cfg.Engine.Match.AutoAcceptScore)
		assert.Equal(t, "info", cfg.Log.SQLLevel)
		assert.Equal(t, 200*time.Millisecond, cfg.Log.SlowQuery)
	})

	t.Run("loads values from environment variables with FEEDLOT prefix", func(t *testing.T) {
		clearFeedlotEnv(t)
		t.Setenv("FEEDLOT_APP_PORT", "9000")
		t.Setenv("FEEDLOT_DATABASE_DRIVER", "sqlite")
		t.Setenv("FEEDLOT_DATABASE_PATH", ":memory:")
		t.Setenv("FEEDLOT_LOCK_BACKEND", "redis")
		t.Setenv("FEEDLOT_STORAGE_BACKEND", "database")
		t.Setenv("FEEDLOT_ENGINE_MATCH_MIN_SCORE", "40")
		t.Setenv("FEEDLOT_ENGINE_DRE_OVERHEAD_RATE", "0.08")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.DSN())
		assert.Equal(t, "redis", cfg.Lock.Backend)
		assert.Equal(t, "database", cfg.Storage.Backend)
		assert.Equal(t, 40, cfg.Engine.Match.MinScore)
		assert.Equal(t, 0.08, cfg.Engine.DRE.OverheadRate)
	})

	t.Run("rejects unknown backends", func(t *testing.T) {
		cases := map[string]string{
			"FEEDLOT_DATABASE_DRIVER": "mysql",
			"FEEDLOT_LOCK_BACKEND":    "etcd",
			"FEEDLOT_STORAGE_BACKEND": "s3",
			"FEEDLOT_LOG_LEVEL":       "verbose",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				clearFeedlotEnv(t)
				t.Setenv(key, value)

				_, err := Load()
				require.Error(t, err)
			})
		}
	})

	t.Run("rejects min score above auto accept score", func(t *testing.T) {
		clearFeedlotEnv(t)
		t.Setenv("FEEDLOT_ENGINE_MATCH_MIN_SCORE", "90")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "min_score")
	})

	t.Run("rejects opex shares that do not sum to one", func(t *testing.T) {
		clearFeedlotEnv(t)
		t.Setenv("FEEDLOT_ENGINE_DRE_ADMINISTRATIVE_SHARE", "0.5")
		t.Setenv("FEEDLOT_ENGINE_DRE_SALES_SHARE", "0.2")
		t.Setenv("FEEDLOT_ENGINE_DRE_FINANCIAL_SHARE", "0.2")
		t.Setenv("FEEDLOT_ENGINE_DRE_OTHER_SHARE", "0.2")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "engine.dre")
	})

	t.Run("production requires database storage", func(t *testing.T) {
		clearFeedlotEnv(t)
		t.Setenv("FEEDLOT_APP_ENV", "production")
		t.Setenv("FEEDLOT_DATABASE_PASSWORD", "secret")
		t.Setenv("FEEDLOT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.backend")

		t.Setenv("FEEDLOT_STORAGE_BACKEND", "database")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestEngineConfig_ReportPolicy(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	policy := cfg.Engine.ReportPolicy()
	require.NoError(t, policy.Validate())
	assert.True(t, policy.Opex.OverheadRate.Equal(decimal.NewFromFloat(0.05)))
	assert.True(t, policy.Tax.IncomeTaxRate.Equal(decimal.NewFromFloat(0.15)))
	assert.True(t, policy.KgPerArroba.Equal(decimal.NewFromInt(15)))
	assert.True(t, cfg.Engine.EpsilonDecimal().Equal(decimal.NewFromFloat(0.01)))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres escapes credentials",
			cfg: DatabaseConfig{
				Driver: "postgres", Host: "db", Port: 5432, User: "feed",
				Password: "p@ss/word", DBName: "feedlot", SSLMode: "disable",
			},
			want: "postgres://feed:p%40ss%2Fword@db:5432/feedlot?sslmode=disable",
		},
		{
			name: "sqlite uses the file path",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "/tmp/feedlot.db"},
			want: "/tmp/feedlot.db",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
