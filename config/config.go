package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/powermanager/api"
	"github.com/kilianp07/powermanager/core/decisionlog"
	coremetrics "github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/core/powermanager"
	"github.com/kilianp07/powermanager/infra/monitoring"
	"github.com/kilianp07/powermanager/infra/mqtt"
	"github.com/kilianp07/powermanager/simulator"
)

const (
	// SourceMQTT reads bounds from MQTT and publishes requests there.
	SourceMQTT = "mqtt"
	// SourceSimulator runs an in-process battery pool.
	SourceSimulator = "sim"
)

// SourceConfig selects where bounds come from and where requests go.
type SourceConfig struct {
	Type string `json:"type"`
}

type Config struct {
	PowerManager powermanager.Config `json:"power_manager"`
	MQTT         mqtt.Config         `json:"mqtt"`
	Source       SourceConfig        `json:"source"`
	Simulator    simulator.Config    `json:"simulator"`
	Metrics      coremetrics.Config  `json:"metrics"`
	Logging      decisionlog.Config  `json:"logging"`
	Sentry       monitoring.Config   `json:"sentry"`
	API          api.Config          `json:"api"`
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = SourceMQTT
	}
	c.PowerManager.SetDefaults()
	c.MQTT.SetDefaults()
	c.Simulator.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.Source.Type != SourceMQTT && c.Source.Type != SourceSimulator {
		return fmt.Errorf("unknown source type %s", c.Source.Type)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if c.Source.Type == SourceSimulator {
		if err := c.Simulator.Validate(); err != nil {
			return err
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides: K_MQTT__BROKER sets mqtt.broker.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
