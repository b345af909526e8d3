// Package config loads archdiagram settings.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. a TOML file (--config, or archdiagram.toml in the working directory)
//  3. a .env file in the working directory (missing file ignored)
//  4. process environment variables
//
// Command-line flags are applied on top by the CLI. Variables already set in
// the process environment take precedence over the .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matzehuels/archdiagram/pkg/api"
)

// Default file names.
const (
	DefaultFile    = "archdiagram.toml"
	DefaultEnvFile = ".env"
)

// Config holds all settings.
type Config struct {
	Server    Server    `toml:"server"`
	Generator Generator `toml:"generator"`
	Render    Render    `toml:"render"`
	Log       Log       `toml:"log"`
}

// Server configures the HTTP API and the address clients use to reach it.
type Server struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Domain  string `toml:"domain"` // host name clients connect to
	TempDir string `toml:"temp_dir"`
}

// Generator configures the model API.
type Generator struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Render configures the render worker pool.
type Render struct {
	Workers int `toml:"workers"` // 0 means one per CPU
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: Server{
			Host:    api.DefaultHost,
			Port:    api.DefaultPort,
			Domain:  "localhost",
			TempDir: api.DefaultTempDir(),
		},
		Log: Log{Level: "info"},
	}
}

// Loader reads configuration from files and the environment.
type Loader struct {
	// File is the TOML file. Empty means DefaultFile if it exists.
	File string
	// EnvFile is the dotenv file. Empty means DefaultEnvFile.
	EnvFile string
	// LookupEnv reads environment variables; nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load reads configuration with the default [Loader].
func Load(file string) (Config, error) {
	return Loader{File: file}.Load()
}

// Load applies every source and validates the result.
func (l Loader) Load() (Config, error) {
	cfg := Default()

	file, required := l.File, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := decodeFile(file, required, &cfg); err != nil {
		return Config{}, err
	}

	envFile := l.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: %w", envFile, err)
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, required bool, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := env(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := env(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", key, v)
		}
		*dst = n
		return nil
	}

	str("API_HOST", &c.Server.Host)
	str("API_DOMAIN", &c.Server.Domain)
	str("TEMP_DIR", &c.Server.TempDir)
	str("OPENAI_API_KEY", &c.Generator.APIKey)
	str("OPENAI_MODEL", &c.Generator.Model)
	str("OPENAI_BASE_URL", &c.Generator.BaseURL)
	str("LOG_LEVEL", &c.Log.Level)
	if err := num("API_PORT", &c.Server.Port); err != nil {
		return err
	}
	return num("RENDER_WORKERS", &c.Render.Workers)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range (1-65535)", c.Server.Port)
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("render workers must not be negative, got %d", c.Render.Workers)
	}
	if strings.TrimSpace(c.Server.TempDir) == "" {
		return errors.New("server temp_dir cannot be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (log.Level, error) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(c.Log.Level)))
	if err != nil {
		return 0, fmt.Errorf("log level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	return level, nil
}

// APIURL returns the base URL clients use to reach the server.
func (c Config) APIURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Domain, c.Server.Port)
}
