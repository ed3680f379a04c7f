package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, sourced from environment variables.
type Config struct {
	Port         string
	MongoURI     string
	MongoDB      string
	JWTSecret    string
	TokenExpiry  time.Duration
	CORSOrigins  string
	UploadDir    string
	OpenAIAPIKey string
	MQTTBroker   string
}

// Load reads configuration from the environment, applying defaults for
// anything unset. A .env file is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "craven_fsm"),
		JWTSecret:    getEnv("JWT_SECRET", "craven-cooling-secret-key-2024"),
		TokenExpiry:  24 * time.Hour,
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
	}

	if expStr := os.Getenv("JWT_EXPIRY"); expStr != "" {
		if parsed, err := time.ParseDuration(expStr); err == nil {
			cfg.TokenExpiry = parsed
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
