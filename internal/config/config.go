package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// LocalConfigName is the per-project config file searched for upwards
// from the working directory
const LocalConfigName = ".agentflow.toml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "AGENTFLOW_"

// Config holds all application configuration
type Config struct {
	Paths   PathsConfig   `toml:"paths"`
	Catalog CatalogConfig `toml:"catalog"`
	Log     LogConfig     `toml:"log"`
}

// PathsConfig holds the directory layout. Relative paths are resolved
// against ProjectRoot.
type PathsConfig struct {
	ProjectRoot  string `toml:"project_root" env:"PROJECT_ROOT"`
	RunsDir      string `toml:"runs_dir" env:"RUNS_DIR"`
	SpecsDir     string `toml:"specs_dir" env:"SPECS_DIR"`
	FlowsDir     string `toml:"flows_dir" env:"FLOWS_DIR"`
	SkillsDir    string `toml:"skills_dir" env:"SKILLS_DIR"`
	TemplatesDir string `toml:"templates_dir" env:"TEMPLATES_DIR"`
}

// CatalogConfig holds history database settings
type CatalogConfig struct {
	Enabled bool   `toml:"enabled" env:"CATALOG_ENABLED"`
	Path    string `toml:"path" env:"CATALOG_PATH"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			RunsDir:   "runs",
			SpecsDir:  "specs",
			FlowsDir:  "flows",
			SkillsDir: filepath.Join(".github", "skills"),
		},
		Catalog: CatalogConfig{
			Enabled: true,
			Path:    filepath.Join(".agentflow", "catalog.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults,
// then applies environment overrides and resolves paths
func Load(path string) (*Config, error) {
	return load(path, "")
}

func load(path, baseDir string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if cfg.Paths.ProjectRoot == "" {
		if baseDir != "" {
			cfg.Paths.ProjectRoot = baseDir
		} else {
			wd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			cfg.Paths.ProjectRoot = FindProjectRoot(wd)
		}
	} else if baseDir != "" {
		cfg.Paths.ProjectRoot = resolveAgainst(baseDir, ExpandPath(cfg.Paths.ProjectRoot))
	}
	cfg.resolve()

	return cfg, nil
}

// ApplyEnv overrides fields from AGENTFLOW_* environment variables
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

func (c *Config) resolve() {
	c.Paths.ProjectRoot = ExpandPath(c.Paths.ProjectRoot)
	if abs, err := filepath.Abs(c.Paths.ProjectRoot); err == nil {
		c.Paths.ProjectRoot = abs
	}
	c.Paths.RunsDir = c.Resolve(c.Paths.RunsDir)
	c.Paths.SpecsDir = c.Resolve(c.Paths.SpecsDir)
	c.Paths.FlowsDir = c.Resolve(c.Paths.FlowsDir)
	c.Paths.SkillsDir = c.Resolve(c.Paths.SkillsDir)
	if c.Paths.TemplatesDir != "" {
		c.Paths.TemplatesDir = c.Resolve(c.Paths.TemplatesDir)
	}
	c.Catalog.Path = c.Resolve(c.Catalog.Path)
}

// Resolve expands ~ and makes a relative path absolute against the
// project root
func (c *Config) Resolve(path string) string {
	return resolveAgainst(c.Paths.ProjectRoot, ExpandPath(path))
}

func resolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "agentflow", "config.toml")
}

// FindLocalConfig searches the working directory and its parents for
// LocalConfigName. It returns "" if none is found.
func FindLocalConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, LocalConfigName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// FindProjectRoot returns the nearest ancestor of start holding a .github
// directory, or start itself
func FindProjectRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".github")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// LoadWithLocalFallback loads explicitPath if given, else a local
// .agentflow.toml, else the user config. A local config makes its own
// directory the default project root.
func LoadWithLocalFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(ExpandPath(explicitPath))
	}
	if local := FindLocalConfig(); local != "" {
		return load(local, filepath.Dir(local))
	}
	return Load(DefaultConfigPath())
}

// LoadDotEnv loads dir/.env into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// Save writes the configuration as TOML
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
