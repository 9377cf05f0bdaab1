package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powermanager/core/decisionlog"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `power_manager:
  algorithm: "matryoshka"
  first_bounds_timeout_ms: 2500
  outbox_size: 4
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic_prefix: "site/"
  use_tls: false
source:
  type: "sim"
simulator:
  interval_ms: 200
  batteries:
    - id: 7
      capacity_wh: 5000
      soc: 0.3
      charge_rate_w: 2000
      discharge_rate_w: 2000
      inverters:
        - id: 70
          rated_w: 1500
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
logging:
  backend: "sqlite"
api:
  addr: ":8080"
  token: "secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"algorithm", cfg.PowerManager.Algorithm, "matryoshka"},
		{"first_bounds_timeout_ms", cfg.PowerManager.FirstBoundsTimeoutMS, 2500},
		{"outbox_size", cfg.PowerManager.OutboxSize, 4},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "site"},
		{"source", cfg.Source.Type, SourceSimulator},
		{"batteries", len(cfg.Simulator.Batteries), 1},
		{"battery_id", cfg.Simulator.Batteries[0].ID, uint64(7)},
		{"inverter_rating", cfg.Simulator.Batteries[0].Inverters[0].RatedW, 1500.0},
		{"interval_ms", cfg.Simulator.IntervalMS, 200},
		{"step_ms", cfg.Simulator.StepMS, 200},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"logging.backend", cfg.Logging.Backend, decisionlog.BackendSQLite},
		{"logging.path", cfg.Logging.Path, "decisions.db"},
		{"api.addr", cfg.API.Addr, ":8080"},
		{"api.token", cfg.API.Token, "secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	path := writeConfig(t, "config.json", `{"mqtt": {"broker": "tcp://localhost:1883"}}`)
	t.Setenv("K_POWER_MANAGER__ALGORITHM", "matryoshka")
	t.Setenv("K_MQTT__USERNAME", "env-user")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.MQTT.Username)
	assert.Equal(t, SourceMQTT, cfg.Source.Type)
	assert.Equal(t, "power_manager", cfg.MQTT.TopicPrefix)
	assert.NotEmpty(t, cfg.MQTT.ClientID)
	assert.Equal(t, decisionlog.BackendJSONL, cfg.Logging.Backend)
	assert.Equal(t, "decisions.jsonl", cfg.Logging.Path)
	assert.Positive(t, cfg.PowerManager.OutboxSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", "x = 1"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.yaml", "mqtt:\n  client_id: x\n"))
	assert.Error(t, err, "broker is required")

	_, err = Load(writeConfig(t, "config.yaml", "mqtt:\n  broker: tcp://b:1883\nsource:\n  type: serial\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.yaml", "mqtt:\n  broker: tcp://b:1883\nlogging:\n  backend: csv\n"))
	assert.Error(t, err)
}
