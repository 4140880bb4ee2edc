package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/cogniflow/orchestrator/pkg/config"
)

// serviceConfig is the process-level configuration, loaded entirely from
// the environment (no config files) via kelseyhightower/envconfig, grounded
// on aipilotbyjd-linkflow-ai's platform/config package.
type serviceConfig struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"orchestrator"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	LLMProvider    string `envconfig:"LLM_PROVIDER" default:"anthropic"`
	LLMAPIKey      string `envconfig:"LLM_API_KEY"`
	LLMModel       string `envconfig:"LLM_MODEL" default:"claude-sonnet-4-20250514"`
	EmbeddingAPIKey string `envconfig:"EMBEDDING_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT" default:"120s"`
	NodeTimeout          time.Duration `envconfig:"NODE_TIMEOUT" default:"30s"`
	RevalidationInterval string        `envconfig:"REVALIDATION_INTERVAL" default:"@every 30m"`

	AllowHTTP       bool `envconfig:"ALLOW_OUTBOUND_HTTP" default:"true"`
	AllowPrivateIPs bool `envconfig:"ALLOW_PRIVATE_IPS" default:"false"`
	AllowLocalhost  bool `envconfig:"ALLOW_LOCALHOST" default:"false"`

	// HTTPClientsJSON declares named HTTP client profiles (auth, pooling,
	// default headers) that a TOOL/REST node can select via
	// RESTConfig.ClientName instead of the processor's shared default
	// client. A JSON array of pkg/config.HTTPClientConfig, since envconfig
	// has no native slice-of-structs binding.
	HTTPClientsJSON string `envconfig:"HTTP_CLIENTS_JSON" default:"[]"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

func loadConfig() (*serviceConfig, error) {
	var cfg serviceConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

func (c *serviceConfig) dbDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// httpClients parses HTTPClientsJSON into the named client profiles
// httpclient.Builder needs to construct a Registry.
func (c *serviceConfig) httpClients() ([]config.HTTPClientConfig, error) {
	var clients []config.HTTPClientConfig
	if err := json.Unmarshal([]byte(c.HTTPClientsJSON), &clients); err != nil {
		return nil, fmt.Errorf("parse HTTP_CLIENTS_JSON: %w", err)
	}
	return clients, nil
}
