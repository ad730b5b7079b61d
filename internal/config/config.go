// Package config contains the loader and strongly typed model for scenariosim.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	envparse "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/scenariosim/internal/env"
	"github.com/codex-k8s/scenariosim/internal/playback"
)

const (
	// DefaultPath is the settings file looked up when no --config flag is given.
	DefaultPath = "scenariosim.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SCENARIOSIM_"
)

// Settings holds runtime options for the simulator.
type Settings struct {
	// EnvFiles lists .env files loaded before environment overrides are applied.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// Speed is the interval between pipeline stage advances (e.g. "1500ms").
	Speed time.Duration `yaml:"speed,omitempty" env:"SPEED"`
	// AutoStart starts playback automatically when a pipeline is mounted.
	AutoStart bool `yaml:"autoStart" env:"AUTO_START"`
	// AutoStartDelay delays the automatic start so the first frame is shown.
	AutoStartDelay time.Duration `yaml:"autoStartDelay,omitempty" env:"AUTO_START_DELAY"`
	// CatalogDir is an optional directory of extra scenario YAML files.
	CatalogDir string `yaml:"catalogDir,omitempty" env:"CATALOG_DIR"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty" env:"LOG_LEVEL"`
	// DefaultCluster is the cluster scenario used when a command names none.
	DefaultCluster string `yaml:"defaultCluster,omitempty" env:"DEFAULT_CLUSTER"`
	// DefaultPipeline is the pipeline used when a command names none.
	DefaultPipeline string `yaml:"defaultPipeline,omitempty" env:"DEFAULT_PIPELINE"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Speed:           playback.DefaultSpeed,
		AutoStart:       true,
		AutoStartDelay:  playback.DefaultAutoStartDelay,
		LogLevel:        "info",
		DefaultCluster:  "healthy",
		DefaultPipeline: "success",
	}
}

// LoadOptions controls where settings are read from.
type LoadOptions struct {
	// Path is the settings file. An empty path means DefaultPath.
	Path string
	// Required fails the load when the file does not exist.
	Required bool
	// Environ replaces the process environment; nil means env.FromOS().
	Environ env.Vars
}

// Load resolves settings from defaults, the settings file, its envFiles and
// the environment, in increasing precedence. CLI flags are applied by the caller.
func Load(opts LoadOptions) (*Settings, error) {
	path := opts.Path
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	osVars := opts.Environ
	if osVars == nil {
		osVars = env.FromOS()
	}

	cfg := Defaults()
	baseDir := "."

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !opts.Required:
		raw = nil
	case err != nil:
		return nil, fmt.Errorf("read config %q: %w", path, err)
	default:
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		baseDir = filepath.Dir(abs)
	}

	envMap := osVars
	if raw != nil {
		header, err := readHeader(path, raw, osVars)
		if err != nil {
			return nil, err
		}
		fileVars, err := env.LoadEnvFiles(baseDir, header.EnvFiles)
		if err != nil {
			return nil, err
		}
		envMap = env.Merge(fileVars, osVars)

		rendered, err := render(path, raw, envMap)
		if err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(rendered))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.CatalogDir != "" && !filepath.IsAbs(cfg.CatalogDir) {
			cfg.CatalogDir = filepath.Join(baseDir, cfg.CatalogDir)
		}
	}

	if err := envparse.ParseWithOptions(&cfg, envparse.Options{
		Environment: envMap,
		Prefix:      EnvPrefix,
	}); err != nil {
		return nil, fmt.Errorf("parse %s* environment: %w", EnvPrefix, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %s", s.Speed)
	}
	if s.AutoStartDelay < 0 {
		return fmt.Errorf("autoStartDelay must not be negative, got %s", s.AutoStartDelay)
	}
	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", s.LogLevel)
	}
	return nil
}

// rawHeader is a minimal struct used to extract envFiles before templating.
type rawHeader struct {
	EnvFiles []string `yaml:"envFiles"`
}

// readHeader extracts envFiles. Template actions inside double-quoted scalars
// are not valid YAML until rendered, so such files are rendered against the
// process environment first.
func readHeader(path string, raw []byte, osVars env.Vars) (rawHeader, error) {
	var header rawHeader
	if err := yaml.Unmarshal(raw, &header); err == nil {
		return header, nil
	}
	rendered, err := render(path, raw, osVars)
	if err != nil {
		return rawHeader{}, err
	}
	if err := yaml.Unmarshal(rendered, &header); err != nil {
		return rawHeader{}, fmt.Errorf("parse top-level config fields: %w", err)
	}
	return header, nil
}

// render executes the settings file as a text/template with envOr and default helpers.
func render(name string, raw []byte, envMap env.Vars) ([]byte, error) {
	tmpl, err := template.New(filepath.Base(name)).Funcs(template.FuncMap{
		"default": funcDef,
		"envOr":   funcEnvOr(envMap),
		"toLower": strings.ToLower,
	}).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return nil, fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.Bytes(), nil
}

// funcDef returns def when value is empty or whitespace, otherwise value.
func funcDef(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// funcEnvOr returns a function that looks up a key in envMap and falls back to def.
func funcEnvOr(envMap env.Vars) func(key, def string) string {
	return func(key, def string) string {
		if v, ok := envMap.Lookup(key); ok {
			return v
		}
		return def
	}
}
