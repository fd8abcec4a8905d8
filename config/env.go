package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	_ = godotenv.Load()
	// If .env is missing, ignore error (env vars can be set by other means)
	log.Println("Environment variables loaded (if .env present)")
}

// GetEnv returns the value of k or d when unset or empty.
func GetEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
