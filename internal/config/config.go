// Package config loads service configuration from environment variables.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every configurable concern of the service.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Stream StreamConfig
	Auth   AuthConfig
	Store  StoreConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	stream, err := loadStreamConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		AI:     ai,
		Stream: stream,
		Auth: AuthConfig{
			BaseURL: strings.TrimSpace(os.Getenv("AUTH_BASE_URL")),
			Token:   strings.TrimSpace(os.Getenv("AUTH_TOKEN")),
		},
		Store: StoreConfig{
			SQLitePath: strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" and "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}
	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model used by the ai-chat function.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("chat model credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// StreamConfig describes the upstream streaming gateway.
type StreamConfig struct {
	GatewayURL  string
	AppID       string
	ReadTimeout time.Duration
}

// Enabled reports whether a gateway endpoint is configured.
func (c StreamConfig) Enabled() bool {
	return c.GatewayURL != ""
}

func loadStreamConfig() (StreamConfig, error) {
	readTimeout := 60 * time.Second
	if override, err := parseOptionalIntEnv("STREAM_READ_TIMEOUT"); err != nil {
		return StreamConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return StreamConfig{}, fmt.Errorf("STREAM_READ_TIMEOUT must be at least 1 second")
		}
		readTimeout = time.Duration(*override) * time.Second
	}

	return StreamConfig{
		GatewayURL:  strings.TrimSpace(os.Getenv("STREAM_GATEWAY_URL")),
		AppID:       getEnvOrDefault("STREAM_APP_ID", "zenchat"),
		ReadTimeout: readTimeout,
	}, nil
}

// AuthConfig describes the identity collaborator.
type AuthConfig struct {
	BaseURL string
	Token   string
}

// StoreConfig describes the persistence backend. An empty SQLitePath
// selects the in-memory store.
type StoreConfig struct {
	SQLitePath string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
