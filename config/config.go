// Package config loads channel options from a YAML file, the same
// read-unmarshal-default-validate shape as cellorg's internal/config.Load.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options controls a Channel's behavior. Zero-value Options is ready to
// use and matches DefaultOptions.
type Options struct {
	// TimeoutMs is how long a request call waits before failing with a
	// TimeoutError. Zero means no timeout.
	TimeoutMs int64 `yaml:"timeout_ms"`

	// Dialect selects the wire serialization scheme: "json" or
	// "enhanced". Empty means enhanced, per spec's "omitted => enhanced".
	Dialect string `yaml:"dialect"`

	// EnableTransfer turns on transferable-value rewriting for transports
	// that advertise Capabilities.Transfer.
	EnableTransfer bool `yaml:"enable_transfer"`

	// Debug enables the channel's debug log lines (transport read ended,
	// unknown message type, callback for an unregistered id). Individual
	// messages sent and received are not logged.
	Debug bool `yaml:"debug"`
}

// DefaultOptions is used by NewChannel when no Options are supplied.
func DefaultOptions() Options {
	return Options{
		TimeoutMs:      30_000,
		Dialect:        "enhanced",
		EnableTransfer: true,
		Debug:          false,
	}
}

// Load reads and parses a YAML options file, filling in defaults for any
// field the file leaves out and validating ranges.
func Load(filename string) (*Options, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: read options file: %w", err)
	}

	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("config: parse options file: %w", err)
	}

	if opts.Dialect == "" {
		opts.Dialect = "enhanced"
	}
	if opts.Dialect != "json" && opts.Dialect != "enhanced" {
		return nil, fmt.Errorf("config: unknown dialect %q, want \"json\" or \"enhanced\"", opts.Dialect)
	}
	if opts.TimeoutMs < 0 {
		return nil, fmt.Errorf("config: timeout_ms cannot be negative: %d", opts.TimeoutMs)
	}

	return &opts, nil
}
