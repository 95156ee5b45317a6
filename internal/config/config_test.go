package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "claude"
model = "claude-3-5-haiku-latest"

[ranking]
cooldown_days = 5
focus_limit = 8

[reminders]
min_confidence = 0.8
auto_resolve = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 12, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Ranking.CooldownDays)
	assert.Equal(t, 8, cfg.Ranking.FocusLimit)
	assert.Equal(t, 3, cfg.Ranking.SegmentLimit)
	assert.Equal(t, 0.8, cfg.Reminders.MinConfidence)
	assert.True(t, cfg.Reminders.AutoCreate)
	assert.False(t, cfg.Reminders.AutoResolve)
	assert.Equal(t, 7, cfg.Review.WindowDays)
	assert.Len(t, cfg.Segments, 3)
	require.NoError(t, cfg.Validate())
}

func TestLoad_CustomSegments(t *testing.T) {
	path := writeConfig(t, `
[[segments]]
key = "climbing"
label = "Climbing"
aliases = ["climb", "boulder"]
default_action = "Plan a session"
fallback_reason = "Keep the rope team together"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Segments, 1)
	assert.Equal(t, "climbing", cfg.Segments[0].Key)
	assert.True(t, cfg.Segments[0].Matches("Bouldering crew"))
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	def := Default()
	def.fillSegments()
	assert.Equal(t, def, cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[llm\nprovider="))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("MEMGRAPH_URI", "bolt://graph:7687")
	t.Setenv("PORT", "9090")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "bolt://graph:7687", cfg.Memgraph.URI)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Len(t, cfg.Segments, 3)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	cases := map[string]func(*Config){
		"provider":      func(c *Config) { c.LLM.Provider = "mistral" },
		"cooldown":      func(c *Config) { c.Ranking.CooldownDays = 15 },
		"focus limit":   func(c *Config) { c.Ranking.FocusLimit = 1 },
		"segment limit": func(c *Config) { c.Ranking.SegmentLimit = 6 },
		"confidence":    func(c *Config) { c.Reminders.MinConfidence = 1.2 },
		"port":          func(c *Config) { c.Server.Port = "http" },
		"segment":       func(c *Config) { c.Segments[0].Aliases = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.fillSegments()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRankingConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultRanking().Validate())
	assert.Error(t, RankingConfig{CooldownDays: -1, FocusLimit: 5, SegmentLimit: 3}.Validate())
}
