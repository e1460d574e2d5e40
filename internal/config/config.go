// Package config loads the immutable application configuration. Values
// come from an optional YAML file with environment variable overrides;
// the resulting Config is validated once at startup and injected into
// the components that need it, never read through ambient globals.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Source  SourceConfig  `yaml:"source"`
	Company CompanyConfig `yaml:"company"`
	Export  ExportConfig  `yaml:"export"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8080", env LISTEN_ADDR).
	Addr string `yaml:"addr"`

	// ReadTimeout / WriteTimeout bound request handling.
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// SourceConfig points at the published spreadsheet the catalog is built
// from. Exactly one of SheetURL and FilePath must be set.
type SourceConfig struct {
	// SheetURL is the published CSV URL of the sheet (env SHEET_URL).
	SheetURL string `yaml:"sheet_url"`

	// FilePath is a local .csv or .xlsx alternative to SheetURL,
	// mostly used for development and for sheetlint (env SHEET_FILE).
	FilePath string `yaml:"file_path"`

	// FetchTimeout bounds one catalog fetch (default 30s).
	FetchTimeout Duration `yaml:"fetch_timeout"`
}

// CompanyConfig is the static company block rendered on every invoice.
type CompanyConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	LogoURL string `yaml:"logo_url"`
	Notes   string `yaml:"notes"`

	// TaxRate is the consumption tax percentage applied to subtotals
	// (default 10).
	TaxRate float64 `yaml:"tax_rate"`
}

// ExportConfig configures the PDF export collaborator.
type ExportConfig struct {
	// RasterizerCommand is an external HTML-to-PDF converter invoked
	// with the rendered invoice on stdin and the PDF expected on
	// stdout (e.g. "wkhtmltopdf - -"). Empty disables PDF export;
	// the export endpoint then reports the one-shot failure state.
	RasterizerCommand string `yaml:"rasterizer_command"`

	// Timeout bounds one export run (default 60s).
	Timeout Duration `yaml:"timeout"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and defaults, and validates the result.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SHEET_URL"); v != "" {
		cfg.Source.SheetURL = v
	}
	if v := os.Getenv("SHEET_FILE"); v != "" {
		cfg.Source.FilePath = v
	}
	if v := os.Getenv("TAX_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Company.TaxRate = rate
		}
	}
	if v := os.Getenv("RASTERIZER_COMMAND"); v != "" {
		cfg.Export.RasterizerCommand = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = Duration(60 * time.Second)
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(30 * time.Second)
	}
	if cfg.Source.FetchTimeout == 0 {
		cfg.Source.FetchTimeout = Duration(30 * time.Second)
	}
	if cfg.Company.TaxRate == 0 {
		cfg.Company.TaxRate = 10
	}
	if cfg.Export.Timeout == 0 {
		cfg.Export.Timeout = Duration(60 * time.Second)
	}
}

// Validate fails fast on misconfiguration.
func (c Config) Validate() error {
	if c.Source.SheetURL == "" && c.Source.FilePath == "" {
		return fmt.Errorf("source: one of sheet_url or file_path is required")
	}
	if c.Source.SheetURL != "" && c.Source.FilePath != "" {
		return fmt.Errorf("source: sheet_url and file_path are mutually exclusive")
	}
	if c.Company.TaxRate < 0 {
		return fmt.Errorf("company: tax_rate must not be negative")
	}
	return nil
}
