package match

// Config holds the matching defaults loaded from the environment.
type Config struct {
	// DefaultThreshold is used when a request does not carry a threshold.
	DefaultThreshold float64 `mapstructure:"default_threshold" default:"70"`
	// PrimaryLabel names the primary list in output columns.
	PrimaryLabel string `mapstructure:"primary_label" default:"primary"`
	// ReferenceLabel names the reference list in output columns.
	ReferenceLabel string `mapstructure:"reference_label" default:"reference"`
	// Workers is the number of concurrent fuzzy searches per run.
	Workers int `mapstructure:"workers" default:"1"`
	// SessionTTLMinutes expires idle wizard sessions. Zero keeps them forever.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" default:"60"`
}

// Options converts the configuration into run options with the given threshold.
func (c Config) Options(threshold float64) Options {
	return Options{
		Threshold:      threshold,
		PrimaryLabel:   c.PrimaryLabel,
		ReferenceLabel: c.ReferenceLabel,
		Workers:        c.Workers,
	}
}
