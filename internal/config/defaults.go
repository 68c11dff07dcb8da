package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{
		Files:           defaults.Files,
		Exclude:         defaults.Exclude,
		Args:            defaults.Args,
		IncludeComments: loaded.IncludeComments || defaults.IncludeComments,
		Output:          mergeOutputConfig(loaded.Output, defaults.Output),
		Scripts:         defaults.Scripts,
	}
	if len(loaded.Files) > 0 {
		result.Files = append([]string(nil), loaded.Files...)
	}
	if len(loaded.Exclude) > 0 {
		result.Exclude = append([]string(nil), loaded.Exclude...)
	}
	if len(loaded.Args) > 0 {
		result.Args = append([]string(nil), loaded.Args...)
	}
	if loaded.Scripts.Dir != "" {
		result.Scripts.Dir = loaded.Scripts.Dir
	}
	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	result := defaults
	if loaded.Format != "" {
		result.Format = loaded.Format
	}
	if loaded.Path != "" {
		result.Path = loaded.Path
	}
	result.Split = loaded.Split || defaults.Split
	return result
}
