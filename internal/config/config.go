// Package config loads the immutable runtime configuration from the process
// environment. Every component receives a copy of Config instead of reading
// globals.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultGraphQLURL is GitHub's public GraphQL endpoint.
const DefaultGraphQLURL = "https://api.github.com/graphql"

// Config holds everything read from the environment at startup.
// Token is optional: without it the public, unauthenticated endpoints are
// used and the contribution query is disabled.
type Config struct {
	Username    string        `envconfig:"GITHUB_USERNAME" validate:"required"`
	Token       string        `envconfig:"GITHUB_TOKEN"`
	APIBaseURL  string        `envconfig:"GITHUB_API_URL" default:"https://api.github.com/" validate:"url"`
	GraphQLURL  string        `envconfig:"GITHUB_GRAPHQL_URL" default:"https://api.github.com/graphql" validate:"url"`
	HTTPTimeout time.Duration `split_words:"true" default:"15s" validate:"gt=0"`
	OutputPath  string        `split_words:"true" default:"README.md" validate:"required"`
	CloneDepth  int           `split_words:"true" default:"50" validate:"gt=0"`
}

// Load reads a .env file if present, then the environment, and validates the
// result.
func Load() (Config, error) {
	// Best effort; a missing .env file is the normal case.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
