package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version  int                `toml:"version"`
	Output   Output             `toml:"output"`
	Exclude  Exclude            `toml:"exclude"`
	Scan     Scan               `toml:"scan"`
	History  History            `toml:"history"`
	Metrics  Metrics            `toml:"metrics"`
	Dialects map[string]Dialect `toml:"dialects"`
}

type Output struct {
	Dir        string `toml:"dir"`
	CacheFile  string `toml:"cache_file"`
	ReportFile string `toml:"report_file"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Scan struct {
	Workers      int   `toml:"workers"`
	IncludeTests bool  `toml:"include_tests"`
	TrackUsages  *bool `toml:"track_usages"`
	UseGitignore *bool `toml:"use_gitignore"`
}

type History struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
	Keep    int    `toml:"keep"`
}

type Metrics struct {
	Address string `toml:"address"`
}

type Dialect struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no ownmap.toml exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = ".ownmap"
	}
	if strings.TrimSpace(cfg.Output.CacheFile) == "" {
		cfg.Output.CacheFile = "cache.json"
	}
	if strings.TrimSpace(cfg.Output.ReportFile) == "" {
		cfg.Output.ReportFile = "report.html"
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{
			".git", "vendor", "node_modules", ".cache", "var",
		}
	}

	if cfg.Scan.Workers <= 0 {
		cfg.Scan.Workers = 8
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "history.db"
	}
	if cfg.History.Keep <= 0 {
		cfg.History.Keep = 50
	}

	if cfg.Dialects == nil {
		cfg.Dialects = map[string]Dialect{}
	}
	defaults := map[string][]string{
		"php":        {".php"},
		"javascript": {".js", ".mjs", ".cjs"},
		"typescript": {".ts"},
	}
	for name, exts := range defaults {
		d := cfg.Dialects[name]
		if len(d.Extensions) == 0 {
			d.Extensions = exts
		}
		cfg.Dialects[name] = d
	}
}

func (d Dialect) IsEnabled() bool {
	if d.Enabled == nil {
		return true
	}
	return *d.Enabled
}

func (s Scan) UsagesEnabled() bool {
	if s.TrackUsages == nil {
		return true
	}
	return *s.TrackUsages
}

func (s Scan) GitignoreEnabled() bool {
	if s.UseGitignore == nil {
		return true
	}
	return *s.UseGitignore
}

func (h History) IsEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; only version 1 is supported", cfg.Version)
	}
	for name, d := range cfg.Dialects {
		for _, ext := range d.Extensions {
			if !strings.HasPrefix(ext, ".") {
				return fmt.Errorf("dialect %q: extension %q must start with a dot", name, ext)
			}
		}
	}
	for _, pattern := range cfg.Exclude.Dirs {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.dirs contains an empty pattern")
		}
	}
	return nil
}
