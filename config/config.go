// Package config loads runtime settings for vetsys.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (Default).
//  2. An optional JSON file named by --config or VETSYS_CONFIG.
//  3. VETSYS_* environment variables.
//  4. Command-line flags that were set explicitly.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"vetsys/clinic"
	"vetsys/logging"
)

const envPrefix = "VETSYS_"

// Config holds runtime settings.
type Config struct {
	DataDir                  string `json:"data_dir"`
	OwnersFile               string `json:"owners_file"`
	PetsFile                 string `json:"pets_file"`
	AppointmentsFile         string `json:"appointments_file"`
	UsersFile                string `json:"users_file"`
	LogLevel                 string `json:"log_level"`
	LogFormat                string `json:"log_format"`
	PasswordScheme           string `json:"password_scheme"`
	AllowWeekendAppointments bool   `json:"allow_weekend_appointments"`
	MaxLoginAttempts         int    `json:"max_login_attempts"`
	SQLitePath               string `json:"sqlite_path"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataDir:          ".",
		OwnersFile:       clinic.OwnersFile,
		PetsFile:         clinic.PetsFile,
		AppointmentsFile: clinic.AppointmentsFile,
		UsersFile:        clinic.UsersFile,
		LogLevel:         "info",
		LogFormat:        "text",
		PasswordScheme:   clinic.SchemeSHA256,
		MaxLoginAttempts: 3,
		SQLitePath:       "vetsys.db",
	}
}

// Load builds a Config from defaults, the JSON file at jsonPath (if any),
// environment variables and the explicitly set flags in fs (if not nil).
func Load(jsonPath string, getenv func(string) string, fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	if jsonPath == "" {
		jsonPath = getenv(envPrefix + "CONFIG")
	}
	if err := cfg.LoadJSON(jsonPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(getenv); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := cfg.ApplyFlags(fs); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// LoadJSON overlays fields present in the JSON file at path. An empty path is a no-op.
func (c *Config) LoadJSON(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnv overlays the VETSYS_* variables that are set.
func (c *Config) LoadEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	str("DATA_DIR", &c.DataDir)
	str("OWNERS_FILE", &c.OwnersFile)
	str("PETS_FILE", &c.PetsFile)
	str("APPOINTMENTS_FILE", &c.AppointmentsFile)
	str("USERS_FILE", &c.UsersFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("PASSWORD_SCHEME", &c.PasswordScheme)
	str("SQLITE_PATH", &c.SQLitePath)

	if v := getenv(envPrefix + "ALLOW_WEEKENDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sALLOW_WEEKENDS: invalid boolean %q", envPrefix, v)
		}
		c.AllowWeekendAppointments = b
	}
	if v := getenv(envPrefix + "MAX_LOGIN_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_LOGIN_ATTEMPTS: invalid integer %q", envPrefix, v)
		}
		c.MaxLoginAttempts = n
	}
	return nil
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "path to a JSON config file")
	fs.String("data-dir", d.DataDir, "directory holding the CSV data files")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	fs.String("log-format", d.LogFormat, "log format: text or json")
	fs.String("password-scheme", d.PasswordScheme, "hash for new passwords: sha256 or bcrypt")
	fs.Bool("allow-weekends", d.AllowWeekendAppointments, "allow appointments on Saturdays and Sundays")
	fs.Int("max-login-attempts", d.MaxLoginAttempts, "failed logins before the program exits")
	fs.String("sqlite", d.SQLitePath, "SQLite database used by export-sqlite and import-sqlite")
}

// ApplyFlags copies the flags that were set on the command line.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var errs []error
	str := func(name string, dst *string) {
		if fs.Changed(name) {
			v, err := fs.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	str("data-dir", &c.DataDir)
	str("log-level", &c.LogLevel)
	str("log-format", &c.LogFormat)
	str("password-scheme", &c.PasswordScheme)
	str("sqlite", &c.SQLitePath)
	if fs.Changed("allow-weekends") {
		v, err := fs.GetBool("allow-weekends")
		errs = append(errs, err)
		c.AllowWeekendAppointments = v
	}
	if fs.Changed("max-login-attempts") {
		v, err := fs.GetInt("max-login-attempts")
		errs = append(errs, err)
		c.MaxLoginAttempts = v
	}
	return errors.Join(errs...)
}

// Validate rejects settings the program cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}
	if _, err := clinic.NewHasher(c.PasswordScheme); err != nil {
		errs = append(errs, err)
	}
	if c.MaxLoginAttempts < 1 {
		errs = append(errs, fmt.Errorf("max login attempts must be positive, got %d", c.MaxLoginAttempts))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir must not be empty"))
	}
	return errors.Join(errs...)
}

// Paths resolves the data file locations. Relative file names are joined to DataDir.
func (c *Config) Paths() clinic.Paths {
	resolve := func(name string) string {
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(c.DataDir, name)
	}
	return clinic.Paths{
		Owners:       resolve(c.OwnersFile),
		Pets:         resolve(c.PetsFile),
		Appointments: resolve(c.AppointmentsFile),
		Users:        resolve(c.UsersFile),
	}
}
