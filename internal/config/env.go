package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds overrides read from the environment.
type EnvConfig struct {
	ConfigPath string `env:"TYPERUSH_CONFIG"`
	DBPath     string `env:"TYPERUSH_DB"`
	LogLevel   string `env:"TYPERUSH_LOG_LEVEL"`
	LogFile    string `env:"TYPERUSH_LOG_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses EnvConfig and fills default paths for unset values.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := ParseEnv(&cfg); err != nil {
		return EnvConfig{}, err
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultConfigPath()
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// LogSettings is the resolved logging configuration.
type LogSettings struct {
	Level string
	File  string
}

// ResolveLog merges file and environment settings. Environment wins.
func ResolveLog(file LogConfig, envCfg EnvConfig) LogSettings {
	out := LogSettings{Level: DefaultLogLevel, File: DefaultLogPath()}
	if file.Level != nil && *file.Level != "" {
		out.Level = *file.Level
	}
	if file.File != nil && *file.File != "" {
		out.File = *file.File
	}
	if envCfg.LogLevel != "" {
		out.Level = envCfg.LogLevel
	}
	if envCfg.LogFile != "" {
		out.File = envCfg.LogFile
	}
	return out
}
