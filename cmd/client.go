package cmd

import (
	"fmt"
	"time"

	"github.com/kilianp07/powermanager/config"
	"github.com/kilianp07/powermanager/infra/mqtt"
)

// connect opens an MQTT client with a client ID unique to this invocation so
// it never kicks the running service off the broker.
func connect(name string) (*mqtt.PahoClient, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	mqttCfg := cfg.MQTT
	suffix := time.Now().UnixNano()
	if mqttCfg.ClientID != "" {
		mqttCfg.ClientID = fmt.Sprintf("%s-%s-%d", mqttCfg.ClientID, name, suffix)
	} else {
		mqttCfg.ClientID = fmt.Sprintf("%s-%d", name, suffix)
	}
	// the CLI must not publish the service's last will
	mqttCfg.LWTTopic = ""
	return mqtt.NewPahoClient(mqttCfg)
}
