// Package config loads agent settings from a config file and the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tjmaxx/jevehome-agent/mcpclient"
)

// Settings is everything the binary needs to assemble an agent.
type Settings struct {
	Agent struct {
		MaxSteps      int           `mapstructure:"max_steps"`
		MaxRetries    int           `mapstructure:"max_retries"`
		HistoryWindow int           `mapstructure:"history_window"`
		ToolTimeout   time.Duration `mapstructure:"tool_timeout"`
		Temperature   float32       `mapstructure:"temperature"`
		Rules         string        `mapstructure:"rules"`
	} `mapstructure:"agent"`

	LLM struct {
		Model  string `mapstructure:"model"`
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"llm"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Providers []mcpclient.ServerConfig `mapstructure:"providers"`
}

// Load reads settings from the given file (optional) and JEVEHOME_* env
// variables, applying defaults for anything absent.
func Load(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("agent.max_steps", 5)
	v.SetDefault("agent.max_retries", 1)
	v.SetDefault("agent.history_window", 20)
	v.SetDefault("agent.tool_timeout", 2*time.Minute)
	v.SetDefault("agent.temperature", 0.2)
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("JEVEHOME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &settings, nil
}
