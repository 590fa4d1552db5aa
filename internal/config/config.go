package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	TotalRounds     int           `env:"TOTAL_ROUNDS" envDefault:"5"`
	CueDelayMin     time.Duration `env:"CUE_DELAY_MIN" envDefault:"2s"`
	CueDelayMax     time.Duration `env:"CUE_DELAY_MAX" envDefault:"5s"`
	FirstRoundPause time.Duration `env:"FIRST_ROUND_PAUSE" envDefault:"1s"`
	TurnPause       time.Duration `env:"TURN_PAUSE" envDefault:"1500ms"`
	RoundPause      time.Duration `env:"ROUND_PAUSE" envDefault:"3s"`
	PenaltyPause    time.Duration `env:"PENALTY_PAUSE" envDefault:"2s"`
	ReactionTimeout time.Duration `env:"REACTION_TIMEOUT" envDefault:"0s"` // 0 disables
	PersistTimeout  time.Duration `env:"PERSIST_TIMEOUT" envDefault:"5s"`

	RoomTTL        time.Duration `env:"ROOM_TTL" envDefault:"1h"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"duel.matches.finished"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TotalRounds < 1 {
		return fmt.Errorf("TOTAL_ROUNDS must be at least 1, got %d", c.TotalRounds)
	}
	if c.CueDelayMin <= 0 || c.CueDelayMax <= c.CueDelayMin {
		return fmt.Errorf("cue delay window [%s, %s) is empty", c.CueDelayMin, c.CueDelayMax)
	}
	if c.ReactionTimeout < 0 {
		return errors.New("REACTION_TIMEOUT must not be negative")
	}
	return nil
}
