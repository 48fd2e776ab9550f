package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 15*time.Second, cfg.LLM.ExtractionInterval)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 12, cfg.Search.Workers)
	assert.Equal(t, 2, cfg.Search.MaxResults)
	assert.Equal(t, 24*time.Hour, cfg.Crawler.CacheTTL)
	assert.Equal(t, 10, cfg.Extraction.NearbyPostcodeRange)
	assert.Equal(t, "prospects", cfg.Pipeline.Collection)
	assert.Equal(t, "log", cfg.Sink.Driver)
	assert.Equal(t, 10, cfg.Log.File.MaxSize)
	assert.Equal(t, 5, cfg.Log.File.MaxBackups)
	assert.Len(t, cfg.Enrich.ContactPaths, 5)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC", "sk-ant-legacy")
	t.Setenv("TAVILY", "tvly-a,tvly-b")
	t.Setenv("SEARCH_WORKERS", "4")

	path := writeConfig(t, `
server:
  port: 9090
llm:
  extraction_interval: 2s
sink:
  driver: postgres
database:
  dbname: leads
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sk-ant-legacy", cfg.LLM.APIKey)
	assert.Equal(t, "tvly-a,tvly-b", cfg.Search.APIKey)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, 2*time.Second, cfg.LLM.ExtractionInterval)
	assert.Equal(t, "leads", cfg.Database.DBName)
	assert.Equal(t, "localhost", cfg.Database.Host)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ANTHROPIC=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("ANTHROPIC") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.LLM.APIKey)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Chdir(t.TempDir())
	base := func() *Config {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		cfg.LLM.APIKey = "k"
		cfg.Search.APIKey = "k"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing llm key", mutate: func(c *Config) { c.LLM.APIKey = "" }, wantErr: "llm.api_key"},
		{name: "missing search key", mutate: func(c *Config) { c.Search.APIKey = "" }, wantErr: "search.api_key"},
		{name: "bad provider", mutate: func(c *Config) { c.LLM.Provider = "gemini" }, wantErr: "llm.provider"},
		{name: "zero workers", mutate: func(c *Config) { c.Search.Workers = 0 }, wantErr: "search.workers"},
		{name: "bad sink", mutate: func(c *Config) { c.Sink.Driver = "mongo" }, wantErr: "sink.driver"},
		{name: "multi without members", mutate: func(c *Config) { c.Sink.Driver = "multi" }, wantErr: "sink.drivers"},
		{
			name: "multi with bad member",
			mutate: func(c *Config) {
				c.Sink.Driver = "multi"
				c.Sink.Drivers = []string{"log", "kafka"}
			},
			wantErr: "kafka",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Sink.Driver = "postgres"
				c.Database.Host = ""
			},
			wantErr: "database",
		},
		{
			name: "redis enabled without addrs",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Addrs = nil
			},
			wantErr: "redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
