package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig   `json:"server"`
	Database  DatabaseConfig `json:"database"`
	AI        AIConfig       `json:"ai"`
	Video     VideoConfig    `json:"video"`
	Email     EmailConfig    `json:"email"`
	Pipeline  PipelineConfig `json:"pipeline"`
	JWTSecret string         `json:"jwt_secret"`
	AppURL    string         `json:"app_url"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// AIConfig selects and configures the text-generation provider.
type AIConfig struct {
	Provider  string `json:"provider"` // "anthropic", "openai" or "stub"
	APIKey    string `json:"api_key"`
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

type VideoConfig struct {
	APIKey string `json:"api_key"`
	Domain string `json:"domain"` // Daily subdomain, also used for placeholder room URLs
}

type EmailConfig struct {
	APIKey      string `json:"api_key"`
	FromAddress string `json:"from_address"`
}

// PipelineConfig controls synthesis behavior.
//
// ReprocessPolicy decides what happens to action items when a completed
// session is run through the pipeline again: "append" keeps the prior batch
// (historical behavior), "replace" deletes it first.
type PipelineConfig struct {
	ReprocessPolicy string `json:"reprocess_policy"`
}

const (
	ReprocessAppend  = "append"
	ReprocessReplace = "replace"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".coachforge"))
	}

	// Set defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "coachforge")
	viper.SetDefault("database.database", "coachforge")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("ai.provider", "anthropic")
	viper.SetDefault("ai.model", "claude-sonnet-4-5-20250514")
	viper.SetDefault("ai.max_tokens", 2000)
	viper.SetDefault("video.domain", "mock")
	viper.SetDefault("email.from_address", "hello@coachforge.pro")
	viper.SetDefault("pipeline.reprocess_policy", ReprocessAppend)
	viper.SetDefault("app_url", "https://coachforge.pro")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := defaultConfig()
			loadEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "coachforge",
			Password: "",
			Database: "coachforge",
			SSLMode:  "disable",
		},
		AI: AIConfig{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-5-20250514",
			MaxTokens: 2000,
		},
		Video: VideoConfig{
			Domain: "mock",
		},
		Email: EmailConfig{
			FromAddress: "hello@coachforge.pro",
		},
		Pipeline: PipelineConfig{
			ReprocessPolicy: ReprocessAppend,
		},
		AppURL: "https://coachforge.pro",
	}
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("COACHFORGE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("COACHFORGE_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if secret := os.Getenv("COACHFORGE_JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if appURL := os.Getenv("COACHFORGE_APP_URL"); appURL != "" {
		cfg.AppURL = appURL
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	// Vendor keys
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.AI.Provider == "anthropic" {
		cfg.AI.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.AI.Provider == "openai" {
		cfg.AI.APIKey = key
	}
	if key := os.Getenv("DAILY_API_KEY"); key != "" {
		cfg.Video.APIKey = key
	}
	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		cfg.Email.APIKey = key
	}
	if from := os.Getenv("RESEND_FROM_EMAIL"); from != "" {
		cfg.Email.FromAddress = from
	}
	if policy := os.Getenv("COACHFORGE_REPROCESS_POLICY"); policy != "" {
		cfg.Pipeline.ReprocessPolicy = policy
	}
}
