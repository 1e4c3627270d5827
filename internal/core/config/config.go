// Package config handles configuration loading and validation for annosync.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/annosync/internal/core/validate"
)

// Config holds the application configuration.
type Config struct {
	// Endpoint is the URL of the sync service, e.g. https://sync.example.com/api/v1/sync.
	Endpoint string `yaml:"endpoint"`
	// SharedSecret is sent with every sync request when set; the server
	// rejects requests whose secret does not match.
	SharedSecret string `yaml:"shared_secret"`

	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// Category is the default annotation category to sync.
	Category string `yaml:"category"`
	// LinkBase is the design file URL used to build deep links back to
	// annotated items, e.g. https://www.figma.com/design/<fileKey>.
	LinkBase string `yaml:"link_base"`

	// Labels are applied to every created issue.
	Labels []string `yaml:"labels"`
	// LabelRules add labels to items whose document path matches a glob
	// pattern, e.g. "Checkout/**" -> [checkout].
	LabelRules []LabelRule `yaml:"label_rules"`

	Project  ProjectConfig  `yaml:"project"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`

	// TimeoutSeconds bounds a single sync request. Zero means the
	// transport default.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	DataDir string `yaml:"-"` // set by caller, not from config file
}

// LabelRule maps a document-path glob pattern to extra issue labels.
type LabelRule struct {
	Pattern string   `yaml:"pattern"`
	Labels  []string `yaml:"labels"`
}

// ProjectConfig identifies the project board issues are attached to.
// Either Name or Number selects the board; Owner defaults to the issue
// owner when empty.
type ProjectConfig struct {
	Name   string `yaml:"name"`
	Number int    `yaml:"number"`
	Owner  string `yaml:"owner"`
}

// Configured reports whether project attachment was requested.
func (p ProjectConfig) Configured() bool {
	return p.Name != "" || p.Number > 0
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// APIURL and GraphQLURL override the GitHub endpoints, for GitHub
	// Enterprise deployments. Empty means github.com.
	APIURL     string `yaml:"api_url"`
	GraphQLURL string `yaml:"graphql_url"`
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Category: "QA",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
	}
}

// Load reads the config file at path, applying defaults for anything
// unset. A missing file is not an error; defaults are returned.
func Load(path string, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through with defaults
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural validity of the loaded config. Fields
// required only by specific commands (endpoint, owner, repo) are checked
// by those commands so that unrelated commands keep working with a
// partial config.
func (c *Config) Validate() error {
	for _, rule := range c.LabelRules {
		if !doublestar.ValidatePattern(rule.Pattern) {
			return fmt.Errorf("label_rules: invalid pattern %q", rule.Pattern)
		}
	}

	if c.Endpoint != "" {
		if err := validate.EndpointField("endpoint", c.Endpoint); err != nil {
			return err
		}
	}
	if c.Owner != "" {
		if err := validate.OwnerField("owner", c.Owner); err != nil {
			return err
		}
	}
	if c.Repo != "" {
		if err := validate.RepoField("repo", c.Repo); err != nil {
			return err
		}
	}

	return nil
}

// RequireSyncTarget validates the fields a sync run cannot proceed
// without. Reported before any network call is attempted.
func (c *Config) RequireSyncTarget() error {
	if err := validate.EndpointField("endpoint", c.Endpoint); err != nil {
		return err
	}
	if err := validate.OwnerField("owner", c.Owner); err != nil {
		return err
	}
	return validate.RepoField("repo", c.Repo)
}

// Timeout returns the configured transport timeout, or zero when the
// transport default should apply.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
