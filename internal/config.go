package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pagesmith/internal/catalog"
	"github.com/starford/pagesmith/internal/listing"
	"github.com/starford/pagesmith/internal/processor"
	"github.com/starford/pagesmith/internal/site"
	"github.com/starford/pagesmith/internal/theme"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App          ApplicationConfig           `yaml:"app"`
	Source       SourceConfig                `yaml:"source"`
	Output       OutputConfig                `yaml:"output"`
	Build        BuildConfig                 `yaml:"build"`
	Auth         AuthConfig                  `yaml:"auth"`
	Theme        theme.Theme                 `yaml:"theme"`
	Defaults     DefaultsConfig              `yaml:"defaults"`
	ContentTypes map[string]site.ContentType `yaml:"content_types"`
	Processors   []processor.RuleConfig      `yaml:"processors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Build.Validate(); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if err := c.Theme.Validate(); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	for i := range c.Processors {
		if err := c.Processors[i].Validate(); err != nil {
			return fmt.Errorf("processors[%d]: %w", i, err)
		}
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig describes where Markdown sources and templates live.
// ExcludeFiles only applies below the root; a root-level file with an
// excluded name is still built.
type SourceConfig struct {
	RootDir      string   `yaml:"root_dir"`
	TemplatesDir string   `yaml:"templates_dir"`
	ListingFile  string   `yaml:"listing_file"`
	ExcludeDirs  []string `yaml:"exclude_dirs"`
	ExcludeFiles []string `yaml:"exclude_files"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RootDir, validation.Required),
		validation.Field(&c.TemplatesDir, validation.Required),
		validation.Field(&c.ListingFile, validation.Required),
	)
}

// OutputConfig holds the rendered site directory.
type OutputConfig struct {
	RootDir string `yaml:"root_dir"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RootDir, validation.Required),
	)
}

// BuildConfig controls the build pipeline.
type BuildConfig struct {
	ManifestPath string `yaml:"manifest_path"`
	Workers      int    `yaml:"workers"`
	Incremental  bool   `yaml:"incremental"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ManifestPath, validation.Required),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// AuthConfig holds authentication configuration for the preview API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// DefaultsConfig holds the text pages fall back to when a document or
// content type leaves it out.
type DefaultsConfig struct {
	FooterText string           `yaml:"footer_text"`
	Listing    listing.Defaults `yaml:"listing"`
	Catalog    CatalogDefaults  `yaml:"catalog"`
}

// CatalogDefaults holds catalog fallbacks.
type CatalogDefaults struct {
	Subtitle string `yaml:"subtitle"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			RootDir:      "./docs",
			TemplatesDir: "./templates",
			ListingFile:  "index.md",
		},
		Output: OutputConfig{
			RootDir: "./w",
		},
		Build: BuildConfig{
			ManifestPath: "./pagesmith.db",
			Workers:      site.DefaultWorkers,
			Incremental:  true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Theme: theme.Default(),
		Defaults: DefaultsConfig{
			FooterText: site.DefaultFooterText,
			Listing:    listing.DefaultPlaceholders(),
			Catalog:    CatalogDefaults{Subtitle: catalog.DefaultSubtitle},
		},
		ContentTypes: map[string]site.ContentType{},
	}
}
