// Package config loads and validates the optional .foreman YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMaxOutput caps in-memory capture for inline executions.
const DefaultMaxOutput = 1 << 20 // 1 MB

// Config holds the parsed .foreman configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int    `yaml:"version"`
	Terminal     string `yaml:"terminal"`   // preferred terminal emulator (POSIX); env overrides win
	Shell        string `yaml:"shell"`      // inline interpreter, e.g. "bash"
	RawMaxOutput int    `yaml:"max_output"` // bytes
}

// ShellName returns the configured shell or the empty string, leaving
// the platform default to the translator.
func (c *Config) ShellName() string {
	return c.Shell
}

// MaxOutputBytes returns the configured inline capture cap or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// LoadResult holds the parsed config and the directory it was found in.
type LoadResult struct {
	Config *Config
	Root   string // directory containing .foreman; falls back to workspace
}

// Load reads the .foreman file, discovered by walking upward from
// workspace. If no file exists anywhere up the tree, a default Config
// is returned.
func Load(workspace string) (*LoadResult, error) {
	root, path, err := findConfig(workspace)
	if err != nil {
		return &LoadResult{Config: &Config{}, Root: workspace}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &LoadResult{Config: &Config{}, Root: root}, nil
		}
		return nil, fmt.Errorf("reading .foreman: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .foreman: %w", err)
	}
	return &LoadResult{Config: cfg, Root: root}, nil
}

// findConfig walks upward from dir looking for a .foreman file.
func findConfig(dir string) (root, path string, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		p := filepath.Join(dir, ".foreman")
		if _, err := os.Stat(p); err == nil {
			return dir, p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf(".foreman not found")
		}
		dir = parent
	}
}
