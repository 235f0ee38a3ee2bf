package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	// DatabaseURL is the Postgres DSN. Required in production.
	DatabaseURL string

	// ServerAddr is the listen address for the HTTP server.
	ServerAddr string

	// WebOrigin, when set, enables CORS for that origin.
	WebOrigin string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ServerAddr:  get("SERVER_ADDR", ":8080"),
		WebOrigin:   os.Getenv("WEB_ORIGIN"),
	}
}

func get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
