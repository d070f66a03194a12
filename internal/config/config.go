package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Vocab struct {
		TTL string `yaml:"ttl"`
	} `yaml:"vocab"`
	Game struct {
		PinLength           int `yaml:"pin_length"`
		PinMaxAttempts      int `yaml:"pin_max_attempts"`
		QuestionTimeDefault int `yaml:"question_time_default"`
		MaxClassSize        int `yaml:"max_class_size"`
		LeaderboardTopK     int `yaml:"leaderboard_top_k"`
		FinalTopK           int `yaml:"final_top_k"`
		StateTopK           int `yaml:"state_top_k"`
	} `yaml:"game"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
