package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/rebelchris/recallect/internal/core/segment"
)

type LLMConfig struct {
	Provider       string `toml:"provider" validate:"omitempty,oneof=openai claude gemini ollama none"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=1,lte=120"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// RankingConfig holds the tuning knobs shared by Today Focus and segment queues.
type RankingConfig struct {
	CooldownDays       int  `toml:"cooldown_days" json:"cooldownDays" validate:"gte=0,lte=14"`
	IncludeLowPriority bool `toml:"include_low_priority" json:"includeLowPriority"`
	FocusLimit         int  `toml:"focus_limit" json:"focusLimit" validate:"gte=2,lte=8"`
	SegmentLimit       int  `toml:"segment_limit" json:"segmentLimit" validate:"gte=1,lte=5"`
}

type RemindersConfig struct {
	MinConfidence float64 `toml:"min_confidence" validate:"gte=0,lte=1"`
	AutoCreate    bool    `toml:"auto_create"`
	AutoResolve   bool    `toml:"auto_resolve"`
}

type ReviewConfig struct {
	WindowDays int `toml:"window_days" validate:"gte=1,lte=90"`
}

type ServerConfig struct {
	Port string `toml:"port" validate:"required,numeric"`
}

// PromptsConfig overrides the built-in system prompts when set.
type PromptsConfig struct {
	ReminderSuggestion string `toml:"reminder_suggestion"`
	ReminderResolution string `toml:"reminder_resolution"`
}

type Config struct {
	LLM       LLMConfig        `toml:"llm"`
	Memgraph  MemgraphConfig   `toml:"memgraph"`
	Ranking   RankingConfig    `toml:"ranking"`
	Reminders RemindersConfig  `toml:"reminders"`
	Review    ReviewConfig     `toml:"review"`
	Server    ServerConfig     `toml:"server"`
	Prompts   PromptsConfig    `toml:"prompts"`
	Segments  []segment.Config `toml:"segments" validate:"dive"`
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "none",
			TimeoutSeconds: 12,
		},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Ranking: DefaultRanking(),
		Reminders: RemindersConfig{
			MinConfidence: 0.72,
			AutoCreate:    true,
			AutoResolve:   true,
		},
		Review: ReviewConfig{WindowDays: 7},
		Server: ServerConfig{Port: "8080"},
	}
}

func DefaultRanking() RankingConfig {
	return RankingConfig{
		CooldownDays: 3,
		FocusLimit:   5,
		SegmentLimit: 3,
	}
}

// Load reads a TOML file over the defaults. Segments fall back to the built-in
// family/friends/work table when the file declares none.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.fillSegments()
	return cfg, nil
}

// ApplyEnv overrides file settings with environment variables.
func (c *Config) ApplyEnv() {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set("LLM_PROVIDER", &c.LLM.Provider)
	set("LLM_MODEL", &c.LLM.Model)
	set("LLM_API_KEY", &c.LLM.APIKey)
	set("LLM_BASE_URL", &c.LLM.BaseURL)
	set("MEMGRAPH_URI", &c.Memgraph.URI)
	set("MEMGRAPH_USER", &c.Memgraph.User)
	set("MEMGRAPH_PASSWORD", &c.Memgraph.Password)
	set("PORT", &c.Server.Port)

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.fillSegments()
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks ranking knobs, including ones supplied per request.
func (r RankingConfig) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid ranking options: %w", err)
	}
	return nil
}

func (c *Config) fillSegments() {
	if len(c.Segments) == 0 {
		c.Segments = append([]segment.Config(nil), segment.DefaultConfigs...)
	}
}
