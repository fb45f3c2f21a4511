package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is loaded from an optional YAML file and overridden by environment
// variables, so container deployments need no file at all.
type Config struct {
	Port        int    `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	Optimizer Optimizer `yaml:"optimizer"`
}

type Optimizer struct {
	TimeBudget       time.Duration `yaml:"time_budget"`
	TravelSpeedKph   float64       `yaml:"travel_speed_kph"`
	WorkdayStartHour int           `yaml:"workday_start_hour"`
	WorkdayEndHour   int           `yaml:"workday_end_hour"`
}

func Default() Config {
	return Config{
		Port: 8080,
		Optimizer: Optimizer{
			TimeBudget:       10 * time.Second,
			TravelSpeedKph:   40,
			WorkdayStartHour: 8,
			WorkdayEndHour:   18,
		},
	}
}

// Load reads the YAML file at path (empty path skips the file) and then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("OPTIMIZE_TIME_BUDGET"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Optimizer.TimeBudget = d
		}
	}
}
