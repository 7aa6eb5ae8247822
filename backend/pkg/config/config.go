package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"warden/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Discord
	DiscordBotToken string

	// AI
	LiteLLMURL       string
	ModelID          string
	OpenRouterAPIKey string

	// Neo4j (memory store)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Paste service for oversized search results
	PasteURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		DiscordBotToken:  getEnv("DISCORD_BOT_TOKEN", ""),
		LiteLLMURL:       getEnv("LITELLM_URL", "http://localhost:4000"),
		ModelID:          getEnv("MODEL_ID", "openrouter/anthropic/claude-3.5-sonnet"),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		Neo4jURI:         getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", "password"),
		PasteURL:         getEnv("PASTE_URL", "https://0x0.st"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"LITELLM_URL", c.LiteLLMURL},
		{"MODEL_ID", c.ModelID},
		{"NEO4J_URI", c.Neo4jURI},
		{"NEO4J_USER", c.Neo4jUser},
		{"NEO4J_PASSWORD", c.Neo4jPassword},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.NewConfigMissingRequired(r.field)
		}
	}
	// Discord token and OpenRouter key are optional for development
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
