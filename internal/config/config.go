package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jward/cdecl/internal/serial"
)

// FileName is the name of the project configuration file.
const FileName = ".cdecl.yaml"

// FormatSQLite selects the SQLite catalog store instead of a file encoding.
const FormatSQLite = "sqlite"

// Config holds the project settings the cdecl command falls back to when
// flags are not given.
//
// Files entries may be glob patterns ("include/**/*.h"); they expand to the
// matching files under the config directory in lexical order, minus any
// that match an Exclude pattern.
type Config struct {
	Files           []string      `yaml:"files"`
	Exclude         []string      `yaml:"exclude,omitempty"`
	Args            []string      `yaml:"args"`
	IncludeComments bool          `yaml:"include_comments"`
	Output          OutputConfig  `yaml:"output"`
	Scripts         ScriptsConfig `yaml:"scripts"`
}

// OutputConfig controls where an extracted catalog is written.
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
	Split  bool   `yaml:"split"`
}

// ScriptsConfig controls Risor script resolution.
type ScriptsConfig struct {
	Dir string `yaml:"dir"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads the nearest .cdecl.yaml at or above workDir, falling back to
// defaults when there is none.
func Load(workDir string) (*Config, error) {
	path, err := FindConfigFile(workDir)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads config from a specific path, merges it with defaults
// and validates the result. Relative file, output and script paths are
// resolved against the config file's directory.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	files, err := expandFiles(dir, merged.Files, merged.Exclude)
	if err != nil {
		return nil, err
	}
	merged.Files = files
	merged.resolvePaths(dir)
	return merged, nil
}

// FindConfigFile locates .cdecl.yaml by walking up from startDir.
func FindConfigFile(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		candidate := filepath.Join(currentDir, FileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	if cfg.Output.Format != FormatSQLite {
		if _, err := serial.ParseFormat(cfg.Output.Format); err != nil {
			return fmt.Errorf("%w: output.format must be one of json, xml, yaml, binary or sqlite, got %q",
				ErrInvalidConfig, cfg.Output.Format)
		}
	}

	if cfg.Output.Split && cfg.Output.Format == FormatSQLite {
		return fmt.Errorf("%w: output.split cannot be used with the sqlite format", ErrInvalidConfig)
	}

	for i, f := range cfg.Files {
		if f == "" {
			return fmt.Errorf("%w: files[%d] is empty", ErrInvalidConfig, i)
		}
		if isPattern(f) {
			if _, err := compilePattern(f); err != nil {
				return fmt.Errorf("%w: files[%d]: %v", ErrInvalidConfig, i, err)
			}
		}
	}

	for i, p := range cfg.Exclude {
		if _, err := compilePattern(p); err != nil {
			return fmt.Errorf("%w: exclude[%d]: %v", ErrInvalidConfig, i, err)
		}
	}

	return nil
}

// SaveDefault writes the default configuration to workDir/.cdecl.yaml.
func SaveDefault(workDir string) (string, error) {
	path := filepath.Join(workDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file already exists: %s", path)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# cdecl project configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

func (c *Config) resolvePaths(dir string) {
	for i, f := range c.Files {
		c.Files[i] = resolve(dir, f)
	}
	if c.Output.Path != "" {
		c.Output.Path = resolve(dir, c.Output.Path)
	}
	if c.Scripts.Dir != "" {
		c.Scripts.Dir = resolve(dir, c.Scripts.Dir)
	}
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
