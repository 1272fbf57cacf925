package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.Mode)
	require.True(t, cfg.Server.CORS.AllowAllOrigins)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.True(t, cfg.Database.AutoMigrate)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, 0.9, cfg.LLM.Temperature)
	require.Equal(t, 1, cfg.Generate.Workers)
	require.Empty(t, cfg.Schedules)
}

func TestLoadOverridesFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
  mode: release
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: draftline
  name: draftline
llm:
  model: custom-model
  temperature: 0.4
generate:
  workers: 4
  seed: 42
schedules:
  - project: acme
    phase: keywords
    cron: "0 3 * * *"
`))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "custom-model", cfg.LLM.Model)
	require.Equal(t, 0.4, cfg.LLM.Temperature)
	require.Equal(t, 4, cfg.Generate.Workers)
	require.EqualValues(t, 42, cfg.Generate.Seed)

	require.Len(t, cfg.Schedules, 1)
	require.Equal(t, "acme", cfg.Schedules[0].Project)
	require.Equal(t, "keywords", cfg.Schedules[0].Phase)
	require.Equal(t, "0 3 * * *", cfg.Schedules[0].Cron)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./data/test.db"}
	require.Equal(t, "./data/test.db", sqlite.DSN())

	pg := DatabaseConfig{
		Driver: "postgres", Host: "db", Port: 5432,
		User: "u", Password: "p", Name: "draftline", SSLMode: "disable",
	}
	require.Equal(t, "host=db port=5432 user=u password=p dbname=draftline sslmode=disable", pg.DSN())
}
