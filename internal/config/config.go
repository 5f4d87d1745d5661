// Package config provides configuration management for docmux using Viper
// for loading from .docmux.yml, DOCMUX_ environment variables and
// command-line flags.
//
// All paths in the configuration are relative to the home documentation
// directory (the working directory docmux runs in).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/docmux/internal/validation"
	"github.com/spf13/viper"
)

// Defaults
const (
	DefaultPort              = 8443
	DefaultHost              = "0.0.0.0"
	DefaultBindRetries       = 20
	DefaultBindRetryInterval = 500 * time.Millisecond
	DefaultIndex             = "docs/index.md"
	DefaultSectionMarker     = "# Projects"
	DefaultSiteDir           = "site"
	DefaultHomeCommand       = "mkdocs build"
	DefaultHomeConfigFile    = "mkdocs.yml"
	DefaultBuildDir          = "build/html"
	DefaultHTMLEntry         = "build/html/index.html"
	DefaultStateDir          = ".docmux"
	DefaultDebounce          = 300 * time.Millisecond
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Home     HomeConfig     `mapstructure:"home"`
	Projects ProjectsConfig `mapstructure:"projects"`
	Watch    WatchConfig    `mapstructure:"watch"`
	State    StateConfig    `mapstructure:"state"`
	Offline  bool           `mapstructure:"offline"`

	// WorkDir is the absolute home documentation directory. Not read from
	// the config file.
	WorkDir string `mapstructure:"-"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	Host              string        `mapstructure:"host"`
	MaxConnections    int           `mapstructure:"max_connections"`
	BindRetries       int           `mapstructure:"bind_retries"`
	BindRetryInterval time.Duration `mapstructure:"bind_retry_interval"`
}

type HomeConfig struct {
	Index      string `mapstructure:"index"`
	Marker     string `mapstructure:"marker"`
	SiteDir    string `mapstructure:"site_dir"`
	Command    string `mapstructure:"command"`
	ConfigFile string `mapstructure:"config_file"`
}

type ProjectsConfig struct {
	Markers   []string `mapstructure:"markers"`
	BuildDir  string   `mapstructure:"build_dir"`
	HTMLEntry string   `mapstructure:"html_entry"`
	Commands  []string `mapstructure:"commands"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Ignore   []string      `mapstructure:"ignore"`
}

type StateConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults and validates
// the result. WorkDir is the current working directory.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set as a single string via env vars or flags
	if v.IsSet("projects.markers") && len(config.Projects.Markers) == 0 {
		config.Projects.Markers = v.GetStringSlice("projects.markers")
	}
	if v.IsSet("projects.commands") && len(config.Projects.Commands) == 0 {
		config.Projects.Commands = v.GetStringSlice("projects.commands")
	}
	if v.IsSet("watch.ignore") && len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = v.GetStringSlice("watch.ignore")
	}

	applyDefaults(&config, v)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	config.WorkDir = wd

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config, v *viper.Viper) {
	if !v.IsSet("server.port") {
		config.Server.Port = DefaultPort
	}
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if !v.IsSet("server.bind_retries") {
		config.Server.BindRetries = DefaultBindRetries
	}
	if config.Server.BindRetryInterval <= 0 {
		config.Server.BindRetryInterval = DefaultBindRetryInterval
	}

	if config.Home.Index == "" {
		config.Home.Index = DefaultIndex
	}
	if config.Home.Marker == "" {
		config.Home.Marker = DefaultSectionMarker
	}
	if config.Home.SiteDir == "" {
		config.Home.SiteDir = DefaultSiteDir
	}
	if config.Home.Command == "" {
		config.Home.Command = DefaultHomeCommand
	}
	if config.Home.ConfigFile == "" {
		config.Home.ConfigFile = DefaultHomeConfigFile
	}

	if len(config.Projects.Markers) == 0 {
		config.Projects.Markers = []string{"__project__", "source"}
	}
	if config.Projects.BuildDir == "" {
		config.Projects.BuildDir = DefaultBuildDir
	}
	if config.Projects.HTMLEntry == "" {
		config.Projects.HTMLEntry = DefaultHTMLEntry
	}
	if len(config.Projects.Commands) == 0 {
		config.Projects.Commands = []string{"make clean", "make html"}
	}

	if config.Watch.Debounce <= 0 {
		config.Watch.Debounce = DefaultDebounce
	}
	if len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = []string{".git", DefaultStateDir, "node_modules", "site", "build"}
	}

	if config.State.Dir == "" {
		config.State.Dir = DefaultStateDir
	}
}

// Path resolves a configured relative path against WorkDir.
func (c *Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.WorkDir, filepath.FromSlash(rel))
}

// IndexPath is the absolute path of the index document.
func (c *Config) IndexPath() string { return c.Path(c.Home.Index) }

// SitePath is the absolute path of the home site output.
func (c *Config) SitePath() string { return c.Path(c.Home.SiteDir) }

// RoutesPath is where the route table is stored.
func (c *Config) RoutesPath() string { return filepath.Join(c.Path(c.State.Dir), "routes.json") }

// StatePath is where runtime flags are stored.
func (c *Config) StatePath() string { return filepath.Join(c.Path(c.State.Dir), "state.json") }

// Addr is the listen address.
func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port) }

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateHomeConfig(&config.Home); err != nil {
		return fmt.Errorf("home config: %w", err)
	}

	if err := validateProjectsConfig(&config.Projects); err != nil {
		return fmt.Errorf("projects config: %w", err)
	}

	if err := validatePath(config.State.Dir); err != nil {
		return fmt.Errorf("state config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.MaxConnections < 0 {
		return fmt.Errorf("max_connections must not be negative")
	}

	if config.BindRetries < 0 {
		return fmt.Errorf("bind_retries must not be negative")
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	return nil
}

func validateHomeConfig(config *HomeConfig) error {
	for _, p := range []string{config.Index, config.SiteDir, config.ConfigFile} {
		if err := validatePath(p); err != nil {
			return err
		}
	}

	if strings.TrimSpace(config.Command) == "" {
		return fmt.Errorf("command must not be empty")
	}

	if _, err := validation.ParseCommand(config.Command); err != nil {
		return err
	}

	return nil
}

func validateProjectsConfig(config *ProjectsConfig) error {
	for _, marker := range config.Markers {
		if marker == "" || strings.ContainsAny(marker, `/\`) {
			return fmt.Errorf("invalid project marker %q", marker)
		}
	}

	for _, p := range []string{config.BuildDir, config.HTMLEntry} {
		if err := validatePath(p); err != nil {
			return err
		}
		if filepath.IsAbs(p) {
			return fmt.Errorf("path should be relative to the project: %s", p)
		}
	}

	for _, command := range config.Commands {
		if strings.TrimSpace(command) == "" {
			return fmt.Errorf("empty project command")
		}
		if _, err := validation.ParseCommand(command); err != nil {
			return err
		}
	}

	return nil
}

// validatePath validates a configured path
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	return nil
}
