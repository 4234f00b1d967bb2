// Package config loads environment-driven configuration structs.
//
// Structs declare their variables with caarlos0/env tags. Load reads an
// optional .env file once (godotenv), parses the environment into the struct
// and caches the result per type, so packages can call Load for shared
// configuration without parsing twice.
//
//	type Config struct {
//		Store     string `env:"SLUG_STORE" envDefault:"mongo"`
//		LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
