package analyzer

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// DefaultConfig points at a local OpenAI-compatible server.
func DefaultConfig(apiKey string) Config {
	return Config{
		Provider: ProviderOpenAI,
		APIKey:   apiKey,
		BaseURL:  "http://localhost:11434/v1",
		Model:    "mistral",
	}
}

func DefaultAnthropicConfig(apiKey string) Config {
	return Config{
		Provider: ProviderAnthropic,
		APIKey:   apiKey,
		Model:    "claude-sonnet-4-5",
	}
}
