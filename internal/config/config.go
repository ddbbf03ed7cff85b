// Package config loads storefront settings.
//
// Sources are layered, later ones winning: built-in defaults, an optional
// YAML file, a .env file, then the process environment. The merged result
// is checked against an embedded CUE schema.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STOREFRONT_"

// Defaults.
const (
	DefaultAPIURL          = "http://localhost:8080/api"
	DefaultDBPath          = "storefront.db"
	DefaultLogLevel        = "info"
	DefaultRequestTimeout  = 10 * time.Second
	DefaultSuggestTTL      = 30 * time.Second
	DefaultSuggestMinChars = 2
)

// Config holds resolved settings.
type Config struct {
	APIURL          string        `yaml:"api_url" json:"api_url"`
	DBPath          string        `yaml:"db_path" json:"db_path"`
	LogLevel        string        `yaml:"log_level" json:"log_level"`
	LogFile         string        `yaml:"log_file" json:"log_file,omitempty"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	SuggestTTL      time.Duration `yaml:"suggest_ttl" json:"suggest_ttl"`
	SuggestMinChars int           `yaml:"suggest_min_chars" json:"suggest_min_chars"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:          DefaultAPIURL,
		DBPath:          DefaultDBPath,
		LogLevel:        DefaultLogLevel,
		RequestTimeout:  DefaultRequestTimeout,
		SuggestTTL:      DefaultSuggestTTL,
		SuggestMinChars: DefaultSuggestMinChars,
	}
}

type loader struct {
	envFile string
	lookup  func(string) (string, bool)
}

// Option configures Load.
type Option func(*loader)

// WithEnvFile reads dotenv variables from path instead of ".env".
// An empty path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *loader) { l.lookup = fn }
}

// Load resolves settings. path names an optional YAML file; an empty path
// skips it, a missing named file is an error. A missing .env is fine.
func Load(path string, opts ...Option) (*Config, error) {
	l := loader{envFile: ".env", lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&l)
	}

	cfg := Default()
	if path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if l.envFile != "" {
		vars, err := godotenv.Read(l.envFile)
		switch {
		case err == nil:
			dotenv = vars
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", l.envFile, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readYAML(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("API_URL", &cfg.APIURL)
	str("DB_PATH", &cfg.DBPath)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	if err := dur("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return err
	}
	if err := dur("SUGGEST_TTL", &cfg.SuggestTTL); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "SUGGEST_MIN_CHARS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSUGGEST_MIN_CHARS: %w", EnvPrefix, err)
		}
		cfg.SuggestMinChars = n
	}
	return nil
}

// Validate checks cfg against the embedded schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	doc := ctx.Encode(map[string]any{
		"api_url":            c.APIURL,
		"db_path":            c.DBPath,
		"log_level":          strings.ToLower(c.LogLevel),
		"log_file":           c.LogFile,
		"request_timeout_ms": c.RequestTimeout.Milliseconds(),
		"suggest_ttl_ms":     c.SuggestTTL.Milliseconds(),
		"suggest_min_chars":  c.SuggestMinChars,
	})

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
