// Package config defines kestrel's TOML configuration: kestrel.toml is
// discovered by walking up from the working directory, and flags and
// environment variables override whatever it sets.
package config

// Config is the root of kestrel.toml.
type Config struct {
	Runner RunnerConfig `toml:"runner"`
	Watch  WatchConfig  `toml:"watch"`
}

// RunnerConfig controls a single run of the registered suites.
type RunnerConfig struct {
	// Reporter selects the output format: "console" or "json".
	Reporter string `toml:"reporter"`

	// Filters restricts the run to suites whose names match at least one
	// doublestar pattern. Empty means run everything.
	Filters []string `toml:"filters"`

	// NoColor disables ANSI styling in console output.
	NoColor bool `toml:"no_color"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Paths are doublestar patterns, relative to the config file's
	// directory, selecting the files whose changes trigger a rerun.
	Paths []string `toml:"paths"`

	// DebounceMS is the quiet period after the last filesystem event
	// before a rerun starts.
	DebounceMS int `toml:"debounce_ms"`
}

// Default returns the configuration used when no kestrel.toml is found.
func Default() *Config {
	return &Config{
		Runner: RunnerConfig{
			Reporter: "console",
		},
		Watch: WatchConfig{
			Paths:      []string{"**/*.go"},
			DebounceMS: 250,
		},
	}
}
