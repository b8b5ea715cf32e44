package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

// Configuration errors.
var (
	ErrUnknownStore = errors.New("unknown store driver")
	ErrMissingDB    = errors.New("mongo store needs DB_HOST and DB_NAME")
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string `env:"HOST_IP" envDefault:"0.0.0.0"` // Host IP for the servers
	RESTPort int    `env:"REST_PORT" envDefault:"8080"`  // Port for the REST API
	GRPCPort int    `env:"GRPC_PORT" envDefault:"9090"`  // Port for the gRPC game service

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"` // mongo or sqlite
	DBHost      string `env:"DB_HOST"`                         // Hostname or IP address for the database
	DBPort      int    `env:"DB_PORT" envDefault:"27017"`      // Port number for the database
	DBUser      string `env:"DB_USER"`                         // Username for the database
	DBPassword  string `env:"DB_PASS"`                         // Password for the database
	DBName      string `env:"DB_NAME"`                         // Name of the database
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"mines.db"`

	RedisAddr      string        `env:"REDIS_ADDR,required,notEmpty"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	LeaderboardTTL time.Duration `env:"LEADERBOARD_TTL" envDefault:"720h"` // Lifetime of an idle leaderboard
	LockExpiry     time.Duration `env:"LOCK_EXPIRY" envDefault:"5s"`       // Expiry of a per-game lock

	GinMode   string `env:"GIN_MODE" envDefault:"release"` // Mode for the Gin framework (e.g., release, debug, test)
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"` // Secret key for JWT signing
	JWTIssuer string `env:"JWT_ISSUER,required,notEmpty"` // Issuer claim for JWTs

	SolverMaxRegion int `env:"SOLVER_MAX_REGION" envDefault:"20"` // Enumeration ceiling for hints
	DefaultRows     int `env:"DEFAULT_ROWS" envDefault:"9"`
	DefaultCols     int `env:"DEFAULT_COLS" envDefault:"9"`
	DefaultMines    int `env:"DEFAULT_MINES" envDefault:"10"`
}

// Envs holds the application's configuration once MustLoad has run.
var Envs Config

// Load reads the environment, after loading a .env file if available.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// MustLoad loads the configuration into Envs or logs a fatal error.
func MustLoad() {
	c, err := Load()
	if err != nil {
		log.Fatalf("[APP] [FATAL] %v", err)
	}
	Envs = c
}

// Validate checks settings that depend on each other.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.DBHost == "" || c.DBName == "" {
			return ErrMissingDB
		}
	case StoreSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.StoreDriver)
	}
	return nil
}

// MongoURI builds the connection string of the mongo store.
func (c Config) MongoURI() string {
	if c.DBUser == "" {
		return fmt.Sprintf("mongodb://%s:%d", c.DBHost, c.DBPort)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%d", c.DBUser, c.DBPassword, c.DBHost, c.DBPort)
}
