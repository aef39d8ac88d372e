package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	NATS    NATSConfig    `yaml:"nats"`
	Engine  EngineConfig  `yaml:"engine"`
}

type StorageConfig struct {
	Type      string `yaml:"type"`      // memory | badger
	Directory string `yaml:"directory"` // for badger
}

type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type EngineConfig struct {
	// InitialFunds seeds the aggregate fund counter the first time the
	// engine state is created, in attos.
	InitialFunds uint64 `yaml:"initial_funds"`
	// FirstBetID is the value the bet id counter starts from.
	FirstBetID uint64 `yaml:"first_bet_id"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "badger"
	}
	if cfg.Storage.Directory == "" {
		cfg.Storage.Directory = "data/casino"
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "casino.events"
	}
	if cfg.Engine.FirstBetID == 0 {
		cfg.Engine.FirstBetID = 1
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Type {
	case "memory", "badger":
	default:
		return fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
	return nil
}
