package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	LogLevel          string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string   `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	CORSOrigins       []string `yaml:"cors-origins" env:"CORS_ORIGIN" env-separator:"," env-default:"*"`
	Storage           Storage  `yaml:"storage"`
	Redis             Redis    `yaml:"redis"`
	SQLiteStoragePath string   `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"renju.db"`
	Game              Game     `yaml:"game"`
}

type Storage struct {
	Driver       string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	ResetOnStart bool   `yaml:"reset-on-start" env:"STORAGE_RESET_ON_START"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	// TurnTimeout of zero disables the server-side turn clock.
	TurnTimeout time.Duration `yaml:"turn-timeout" env:"TURN_TIMEOUT" env-default:"0s"`
}

// MustLoad - load all configurations in config.yml file, environment overrides it.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads the yaml file at path, or only the environment when path is empty.
func Load(path string) (*Config, error) {
	config := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", that.LogLevel)
	}

	switch that.Storage.Driver {
	case DriverMemory, DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", that.Storage.Driver)
	}

	if that.Game.TurnTimeout < 0 {
		return fmt.Errorf("turn timeout must not be negative, got %s", that.Game.TurnTimeout)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
