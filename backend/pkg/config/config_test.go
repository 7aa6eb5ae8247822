package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"warden/backend/pkg/errors"
)

func validConfig() *Config {
	return &Config{
		Port:          "8080",
		Env:           "development",
		LiteLLMURL:    "http://localhost:4000",
		ModelID:       "openrouter/anthropic/claude-3.5-sonnet",
		Neo4jURI:      "bolt://localhost:7687",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "password",
	}
}

func TestValidatePasses(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateMissingRequired(t *testing.T) {
	c := validConfig()
	c.ModelID = ""

	err := c.Validate()
	assert.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "MODEL_ID")
}

func TestEnvPredicates(t *testing.T) {
	c := validConfig()
	assert.True(t, c.IsDevelopment())
	assert.False(t, c.IsProduction())

	c.Env = "production"
	assert.False(t, c.IsDevelopment())
	assert.True(t, c.IsProduction())
}
