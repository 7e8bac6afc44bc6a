package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type OpenSearchConfig struct {
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Insecure bool   `yaml:"insecure"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
}

type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

type DataDogConfig struct {
	APIKey  string `yaml:"api_key"`
	AppKey  string `yaml:"app_key"`
	Site    string `yaml:"site"`
	MaxLogs int    `yaml:"max_logs"`
}

type Config struct {
	HTTPAddr   string           `yaml:"http_addr"`
	DataDir    string           `yaml:"data_dir"`
	LogLevel   string           `yaml:"log_level"`
	OpenSearch OpenSearchConfig `yaml:"opensearch"`
	LLM        LLMConfig        `yaml:"llm"`
	Slack      SlackConfig      `yaml:"slack"`
	DataDog    DataDogConfig    `yaml:"datadog"`
}

const (
	providerOpenAI    = "openai"
	providerAnthropic = "anthropic"
)

func Default() Config {
	return Config{
		HTTPAddr: ":8000",
		DataDir:  "/data/logs",
		LogLevel: "info",
		OpenSearch: OpenSearchConfig{
			Host:     "http://opensearch:9200",
			Insecure: true,
		},
		LLM: LLMConfig{
			Provider: providerOpenAI,
			APIKey:   "fake-key",
			BaseURL:  "http://localhost:11434/v1",
			Model:    "mistral",
		},
	}
}

// Load reads the optional YAML file at path on top of the defaults, then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Warn().Str("path", path).Msg("Config file not found, using defaults")
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg, os.LookupEnv)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) {
	str := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(&cfg.HTTPAddr, "HTTP_ADDR")
	str(&cfg.DataDir, "DATA_DIR")
	str(&cfg.LogLevel, "LOG_LEVEL")

	str(&cfg.OpenSearch.Host, "OPENSEARCH_HOST")
	str(&cfg.OpenSearch.Username, "OPENSEARCH_USERNAME")
	str(&cfg.OpenSearch.Password, "OPENSEARCH_PASSWORD")
	if v, ok := lookup("OPENSEARCH_INSECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Warn().Str("value", v).Msg("Invalid OPENSEARCH_INSECURE, keeping current value")
		} else {
			cfg.OpenSearch.Insecure = b
		}
	}

	str(&cfg.LLM.Provider, "LLM_PROVIDER")
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.Provider == providerAnthropic {
		str(&cfg.LLM.APIKey, "ANTHROPIC_API_KEY")
		str(&cfg.LLM.BaseURL, "ANTHROPIC_BASE_URL")
		str(&cfg.LLM.Model, "ANTHROPIC_MODEL")
	} else {
		str(&cfg.LLM.APIKey, "OPENAI_API_KEY")
		str(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")
		str(&cfg.LLM.Model, "OPENAI_MODEL")
	}

	str(&cfg.Slack.BotToken, "SLACK_BOT_TOKEN")
	str(&cfg.Slack.ChannelID, "SLACK_CHANNEL_ID")

	str(&cfg.DataDog.APIKey, "DD_API_KEY")
	str(&cfg.DataDog.AppKey, "DD_APPLICATION_KEY")
	str(&cfg.DataDog.Site, "DD_SITE")
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case providerOpenAI:
	case providerAnthropic:
		if c.LLM.APIKey == "" || c.LLM.APIKey == Default().LLM.APIKey {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
		if c.LLM.BaseURL == Default().LLM.BaseURL {
			c.LLM.BaseURL = ""
		}
		if c.LLM.Model == Default().LLM.Model {
			c.LLM.Model = "claude-sonnet-4-5"
		}
	default:
		log.Warn().Str("value", c.LLM.Provider).Msg("Invalid LLM_PROVIDER, defaulting to openai")
		c.LLM.Provider = providerOpenAI
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || c.LogLevel == "" {
		log.Warn().Str("value", c.LogLevel).Msg("Invalid LOG_LEVEL, defaulting to info")
		c.LogLevel = "info"
	}

	if c.OpenSearch.Host == "" {
		return fmt.Errorf("OPENSEARCH_HOST is required")
	}
	return nil
}

// Level returns the configured zerolog level.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addresses splits OPENSEARCH_HOST on commas.
func (o OpenSearchConfig) Addresses() []string {
	var out []string
	for _, a := range strings.Split(o.Host, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (d DataDogConfig) Enabled() bool {
	return d.APIKey != "" && d.AppKey != ""
}
