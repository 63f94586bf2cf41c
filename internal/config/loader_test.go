package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MidhulKiruthik/Nova-sub000/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.BackendFile)
				convey.So(cfg.SyncDelayMS, convey.ShouldEqual, 2000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("NOVA_ADDR", ":8080")
			t.Setenv("NOVA_STORAGE_BACKEND", "sqlite")
			t.Setenv("NOVA_SYNC_DELAY_MS", "500")
			t.Setenv("NOVA_WORKER_COUNT", "16")
			t.Setenv("NOVA_SCORE_WEIGHTS__PUNCTUALITY", "400")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.BackendSQLite)
				convey.So(cfg.SyncDelayMS, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.ScoreWeights.Punctuality, convey.ShouldEqual, 400.0)
				convey.So(cfg.ScoreWeights.Sentiment, convey.ShouldEqual, 300.0)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeFile(t, "nova.yaml", `
addr: ":9090"
storage_backend: redis
redis_url: "redis://localhost:6379/0"
history_retention: 20
score_weights:
  risk: 250
`)
			t.Setenv("NOVA_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StorageBackend, convey.ShouldEqual, config.BackendRedis)
				convey.So(cfg.HistoryRetention, convey.ShouldEqual, 20)
				convey.So(cfg.ScoreWeights.Risk, convey.ShouldEqual, 250.0)
				convey.So(cfg.ScoreWeights.Volume, convey.ShouldEqual, 100.0)
				convey.So(cfg.MaxTopLimit, convey.ShouldEqual, 100)
			})

			convey.Convey("And environment variables override file values", func() {
				t.Setenv("NOVA_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("NOVA_CONFIG", writeFile(t, "bad.yaml", "addr: [unclosed"))
			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("NOVA_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with an invalid value", func() {
			t.Setenv("NOVA_STORAGE_BACKEND", "floppy")
			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("NOVA_WORKER_COUNT", "many")
			_, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a dotenv file is named explicitly", func() {
			t.Setenv("NOVA_DOTENV", writeFile(t, "nova.env", "NOVA_MAX_TOP_LIMIT=25\n"))
			t.Cleanup(func() { _ = os.Unsetenv("NOVA_MAX_TOP_LIMIT") })
			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxTopLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When the named dotenv file is missing", func() {
			t.Setenv("NOVA_DOTENV", filepath.Join(t.TempDir(), "absent.env"))
			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NOVA_CONFIG", "NOVA_DOTENV", "NOVA_ADDR", "NOVA_STORAGE_BACKEND", "NOVA_SYNC_DELAY_MS",
		"NOVA_WORKER_COUNT", "NOVA_MAX_TOP_LIMIT", "NOVA_SCORE_WEIGHTS__PUNCTUALITY",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
