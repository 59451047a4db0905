package main

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type config struct {
	Port        int    `env:"PORT" envDefault:"5000"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:identity.db?cache=shared"`

	FirebaseAPIKey    string `env:"FIREBASE_API_KEY,required"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
}

func loadConfig() (config, error) {
	// The .env file is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
