// Package config handles converter settings loaded from YAML and command line.
package config

import (
	"fmt"
	"os"

	"github.com/woozymasta/gisimport/internal/geo"

	"gopkg.in/yaml.v3"
)

// Defaults matching the engine import conventions.
const (
	DefaultInput       = "exported_subdistrict_db.csv"
	DefaultOutput      = "Imported_Streets.json"
	DefaultName        = "Imported_Streets"
	DefaultDescription = "从 CSV 导入的 %d 条街道数据"
	DefaultFormat      = "json"
	DefaultPreviewSize = 1024
)

// Config is the converter run configuration.
type Config struct {
	Input       string `yaml:"input,omitempty"`
	Output      string `yaml:"output,omitempty"`
	Datum       string `yaml:"datum,omitempty"`       // source datum of the table coordinates
	Name        string `yaml:"name,omitempty"`        // save-file name shown by the engine
	Description string `yaml:"description,omitempty"` // fmt template, %d is the feature count
	Format      string `yaml:"format,omitempty"`
	GeoJSON     string `yaml:"geojson,omitempty"`
	Preview     string `yaml:"preview,omitempty"`
	PreviewSize int    `yaml:"preview_size,omitempty"`
	Precision   int    `yaml:"precision,omitempty"` // significant digits kept in JSON numbers, 0 keeps all
	Compact     bool   `yaml:"compact,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input:       DefaultInput,
		Output:      DefaultOutput,
		Datum:       string(geo.BD09),
		Name:        DefaultName,
		Description: DefaultDescription,
		Format:      DefaultFormat,
		PreviewSize: DefaultPreviewSize,
	}
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Merge overrides fields of c with every non-zero field of o.
func (c *Config) Merge(o Config) {
	if o.Input != "" {
		c.Input = o.Input
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Datum != "" {
		c.Datum = o.Datum
	}
	if o.Name != "" {
		c.Name = o.Name
	}
	if o.Description != "" {
		c.Description = o.Description
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.GeoJSON != "" {
		c.GeoJSON = o.GeoJSON
	}
	if o.Preview != "" {
		c.Preview = o.Preview
	}
	if o.PreviewSize > 0 {
		c.PreviewSize = o.PreviewSize
	}
	if o.Precision > 0 {
		c.Precision = o.Precision
	}
	if o.Compact {
		c.Compact = true
	}
}

// SourceDatum returns the parsed source datum.
func (c Config) SourceDatum() (geo.Datum, error) {
	return geo.ParseDatum(c.Datum)
}

// Validate checks settings that cannot be fixed up by defaults.
func (c Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path is empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output path is empty")
	}
	if _, err := c.SourceDatum(); err != nil {
		return err
	}
	if c.Format != "json" && c.Format != "yaml" {
		return fmt.Errorf("unsupported output format %q", c.Format)
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision must be >= 0")
	}
	if c.Preview != "" && c.PreviewSize <= 0 {
		return fmt.Errorf("preview size must be > 0")
	}

	return nil
}
