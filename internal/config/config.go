package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName    string
	Env            string
	HTTPAddr       string
	DBPath         string // empty keeps everything in memory
	RabbitURL      string // empty disables the AMQP publisher
	RabbitExchange string
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:    getenvDefault("SERVICE_NAME", "megano-store"),
		Env:            getenvDefault("ENV", "dev"),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		DBPath:         os.Getenv("STORE_DB_PATH"),
		RabbitURL:      os.Getenv("RABBIT_URL"),
		RabbitExchange: getenvDefault("RABBIT_EXCHANGE", "store_events"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
