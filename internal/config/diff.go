package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; provider and
// store changes require a restart and are reported so the operator can be
// told to restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// RoutingChanged is true when any route-selection threshold changed.
	// Thresholds can be swapped at runtime between extractions.
	RoutingChanged bool

	// ExtractionChanged is true when the timeout or token cap changed.
	ExtractionChanged bool

	// RestartRequired is true when the provider or store settings changed.
	RestartRequired bool
}

// Empty reports whether no tracked change occurred.
func (d ConfigDiff) Empty() bool {
	return !d.LogLevelChanged && !d.RoutingChanged && !d.ExtractionChanged && !d.RestartRequired
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Routing != new.Routing {
		d.RoutingChanged = true
	}

	if old.Extraction != new.Extraction {
		d.ExtractionChanged = true
	}

	if old.LLM != new.LLM || old.Store != new.Store || old.Server.MetricsAddr != new.Server.MetricsAddr {
		d.RestartRequired = true
	}

	return d
}
