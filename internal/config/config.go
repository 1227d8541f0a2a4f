// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"postshare/internal/socialshare"
)

// EnvBaseURL overrides `baseurl` so one site.yaml can serve several deploys.
const EnvBaseURL = "POSTSHARE_BASEURL"

// ErrConfigNotFound is returned when site.yaml does not exist.
var ErrConfigNotFound = errors.New("site config not found")

// SiteConfig holds the configuration from the site.yaml file.
type SiteConfig struct {
	Title       string       `yaml:"title"`
	Author      string       `yaml:"author"`
	BaseURL     string       `yaml:"baseurl"`
	Description string       `yaml:"description"`
	Template    string       `yaml:"template"`
	Social      SocialConfig `yaml:"social"`
}

// SocialConfig controls the share button and preview tags on posts.
type SocialConfig struct {
	// Enabled defaults to true when the key is missing.
	Enabled *bool `yaml:"enabled"`
	// Escape HTML-escapes interpolated metadata. Off by default so the
	// emitted markup matches the unescaped form exactly.
	Escape bool `yaml:"escape"`
}

// SocialEnabled reports whether the social hooks should run.
func (c SiteConfig) SocialEnabled() bool {
	return c.Social.Enabled == nil || *c.Social.Enabled
}

// ShareSite returns the view of the config the social hooks read.
func (c SiteConfig) ShareSite() socialshare.Site {
	return socialshare.Site{
		URL:         c.BaseURL,
		Name:        c.Title,
		Description: c.Description,
	}
}

// LoadSiteConfig reads and parses the YAML config at path. A `.env` file next
// to it, if present, is loaded into the environment first; real environment
// variables win over it.
func LoadSiteConfig(path string) (SiteConfig, error) {
	cfg := SiteConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SiteConfig{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return SiteConfig{}, fmt.Errorf("could not load env file %s: %w", envFile, err)
		}
	}
	applyEnv(&cfg)

	if cfg.Template == "" {
		cfg.Template = "simple"
	}
	return cfg, nil
}

func applyEnv(cfg *SiteConfig) {
	if v, ok := os.LookupEnv(EnvBaseURL); ok {
		cfg.BaseURL = v
	}
}
