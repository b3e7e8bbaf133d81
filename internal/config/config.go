// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	DatabasePath      string
	AssistantBaseURL  string
	AssistantTimeout  int // seconds
	AssistantRetries  int
	HistoryLimit      int // trailing messages sent with each chat call
	ClientTokenSecret string
	GateRulesPath     string // optional override of the embedded rule table
	Environment       string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DatabasePath:      getEnv("DATABASE_PATH", "govassist.db"),
		AssistantBaseURL:  getEnv("ASSISTANT_BASE_URL", "http://localhost:8000"),
		AssistantTimeout:  getEnvAsInt("ASSISTANT_TIMEOUT_SECONDS", 120),
		AssistantRetries:  getEnvAsInt("ASSISTANT_MAX_RETRIES", 2),
		HistoryLimit:      getEnvAsInt("CHAT_HISTORY_LIMIT", 10),
		ClientTokenSecret: getEnv("CLIENT_TOKEN_SECRET", ""),
		GateRulesPath:     getEnv("GATE_RULES_PATH", ""),
		Environment:       env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.AssistantBaseURL == "" {
			missing = append(missing, "ASSISTANT_BASE_URL")
		}
		if cfg.ClientTokenSecret == "" {
			missing = append(missing, "CLIENT_TOKEN_SECRET")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
