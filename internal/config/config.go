package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/oas"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "OASDOC_"

// Config holds the inputs of one generation run.
// See oasdoc.example.yaml for a documented file.
type Config struct {
	Info    Info     `yaml:"info"`
	Servers []string `yaml:"servers" env:"SERVERS" envSeparator:","`

	// BaseDir anchors relative Files, Models and Base paths.
	BaseDir string `yaml:"baseDir" env:"BASE_DIR"`
	// Files are doublestar globs of annotated sources.
	Files []string `yaml:"files" env:"FILES" envSeparator:","`
	// Models are model definition files, loaded in order.
	Models []string `yaml:"models" env:"MODELS" envSeparator:","`
	// Base is an optional document whose paths, tags and components the
	// generated ones are merged over.
	Base string `yaml:"base" env:"BASE"`

	Output         string `yaml:"output" env:"OUTPUT"`
	Format         string `yaml:"format" env:"FORMAT"`
	OpenAPIVersion string `yaml:"openapi" env:"OPENAPI_VERSION"`

	SecuritySchemes map[string]*oas.SecurityScheme `yaml:"securitySchemes"`
}

type Info struct {
	Title       string `yaml:"title" env:"TITLE"`
	Version     string `yaml:"version" env:"VERSION"`
	Description string `yaml:"description" env:"DESCRIPTION"`
}

// Source selects where Load reads from.
type Source struct {
	// File is a YAML config file. Empty skips it.
	File string
	// DotEnv lists .env files. nil loads ./.env when it exists.
	DotEnv []string
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
}

// Default returns the configuration used before any source is applied.
func Default() *Config {
	return &Config{BaseDir: ".", OpenAPIVersion: oas.Version}
}

// Load applies, lowest precedence first: defaults, the YAML file, .env
// files and OASDOC_* variables. Command-line flags are applied by the caller.
func Load(src Source) (*Config, error) {
	cfg := Default()
	if src.File != "" {
		b, err := os.ReadFile(src.File)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", src.File, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if src.Environ == nil {
		if err := godotenv.Load(src.DotEnv...); err != nil && src.DotEnv != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	} else {
		environ := make(map[string]string, len(src.Environ))
		if len(src.DotEnv) > 0 {
			dotenv, err := godotenv.Read(src.DotEnv...)
			if err != nil {
				return nil, fmt.Errorf("config: %w", err)
			}
			for k, v := range dotenv {
				environ[k] = v
			}
		}
		// Real variables win over .env, as with godotenv.Load.
		for k, v := range src.Environ {
			environ[k] = v
		}
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate reports missing required inputs as MissingConfiguration.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Info.Title) == "" {
		missing = append(missing, "info.title")
	}
	if strings.TrimSpace(c.Info.Version) == "" {
		missing = append(missing, "info.version")
	}
	if len(c.Files) == 0 {
		missing = append(missing, "files")
	}
	if len(missing) > 0 {
		return oasdoc.Errorf(oasdoc.CodeMissingConfiguration, strings.Join(missing, ", "), "required configuration is not set")
	}
	switch strings.ToLower(c.Format) {
	case "", oas.FormatJSON, oas.FormatYAML, "yml":
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	if c.OpenAPIVersion != "" && !strings.HasPrefix(c.OpenAPIVersion, "3.0") {
		return errors.New("config: only OpenAPI 3.0.x documents are written")
	}
	return nil
}

// OutputFormat returns Format, or the format implied by Output.
func (c *Config) OutputFormat() string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	return oas.FormatFromPath(c.Output)
}

// ServerList converts Servers into document servers.
func (c *Config) ServerList() []oas.Server {
	if len(c.Servers) == 0 {
		return nil
	}
	out := make([]oas.Server, 0, len(c.Servers))
	for _, u := range c.Servers {
		out = append(out, oas.Server{URL: u})
	}
	return out
}
