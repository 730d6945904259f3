package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// BcryptCost trades login latency against brute-force resistance.
	// Raise it as hardware improves.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Where the browser lands after an external-provider login.
	LoginSuccessURL string `env:"LOGIN_SUCCESS_URL" envDefault:"/"`
	LoginFailureURL string `env:"LOGIN_FAILURE_URL" envDefault:"/auth/failed"`

	// Login entry point unauthenticated browser navigation is sent to.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/login"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRedirectURL  string `env:"SPOTIFY_REDIRECT_URL"`

	TwitterConsumerKey    string `env:"TWITTER_CONSUMER_KEY"`
	TwitterConsumerSecret string `env:"TWITTER_CONSUMER_SECRET"`
	TwitterCallbackURL    string `env:"TWITTER_CALLBACK_URL"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}
