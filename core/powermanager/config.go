package powermanager

import "time"

const (
	defaultFirstBoundsTimeout   = 5 * time.Second
	defaultInitialReportTimeout = time.Second
	defaultOutboxSize           = 16
)

// Config defines power manager settings.
type Config struct {
	// Algorithm selects the arbitration algorithm. Empty selects matryoshka.
	Algorithm     string         `json:"algorithm"`
	AlgorithmConf map[string]any `json:"algorithm_conf"`
	// FirstBoundsTimeoutMS bounds the wait for the first bounds value of a new
	// group. Zero uses the default, a negative value waits forever.
	FirstBoundsTimeoutMS int `json:"first_bounds_timeout_ms"`
	// OutboxSize is the number of actuation requests that can wait for the
	// actuator. When full, the oldest request is dropped.
	OutboxSize int `json:"outbox_size"`
	// InitialReportTimeoutMS bounds the wait of the run loop for a new
	// subscriber to accept its first report. Zero uses the default, a
	// negative value waits forever.
	InitialReportTimeoutMS int `json:"initial_report_timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmMatryoshka
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = defaultOutboxSize
	}
}

// FirstBoundsTimeout returns the wait limit for a group's first bounds.
// Zero means no limit.
func (c Config) FirstBoundsTimeout() time.Duration {
	switch {
	case c.FirstBoundsTimeoutMS < 0:
		return 0
	case c.FirstBoundsTimeoutMS == 0:
		return defaultFirstBoundsTimeout
	default:
		return time.Duration(c.FirstBoundsTimeoutMS) * time.Millisecond
	}
}

// InitialReportTimeout returns the wait limit for delivering the report a
// new subscription gets on registration. Zero means no limit.
func (c Config) InitialReportTimeout() time.Duration {
	switch {
	case c.InitialReportTimeoutMS < 0:
		return 0
	case c.InitialReportTimeoutMS == 0:
		return defaultInitialReportTimeout
	default:
		return time.Duration(c.InitialReportTimeoutMS) * time.Millisecond
	}
}
