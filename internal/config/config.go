package config

import (
	"fmt"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

type Database struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
}

type Config struct {
	Port     int
	APIKey   string
	Database Database
}

// Load reads the service configuration from the environment (a .env file is
// picked up automatically). Database variables are required; the server port
// and target schema have defaults, and an empty API_KEY disables auth.
func Load() (*Config, error) {
	cfg := &Config{
		Port:   8080,
		APIKey: os.Getenv("API_KEY"),
	}

	if p := os.Getenv("PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", p, err)
		}
		cfg.Port = port
	}

	required := []struct {
		name  string
		value *string
	}{
		{"DB_HOST", &cfg.Database.Host},
		{"DB_PORT", &cfg.Database.Port},
		{"DB_USERNAME", &cfg.Database.Username},
		{"DB_PASSWORD", &cfg.Database.Password},
		{"DB_DATABASE", &cfg.Database.Database},
	}
	for _, v := range required {
		*v.value = os.Getenv(v.name)
		if *v.value == "" {
			return nil, fmt.Errorf("%s environment variable is required", v.name)
		}
	}

	cfg.Database.Schema = os.Getenv("DB_SCHEMA")
	if cfg.Database.Schema == "" {
		cfg.Database.Schema = "public"
	}

	return cfg, nil
}
