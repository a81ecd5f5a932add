// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/statement-insights/internal/narrative"
	"github.com/dvloznov/statement-insights/internal/oracle"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration shared by the binaries.
type Config struct {
	Port     string
	LogLevel string

	Oracle   oracle.Settings
	Timeouts narrative.Timeouts

	GCSBucket       string
	BigQueryProject string

	DefaultRisk  float64
	TaxRulesFile string

	// APIKey protects the HTTP API when set.
	APIKey string

	JobWorkers    int
	JobMaxRetries int
}

// providerKeys names the API key variable of each oracle provider.
var providerKeys = map[string]string{
	oracle.ProviderSarvam:    "SARVAM_API_KEY",
	oracle.ProviderGemini:    "GEMINI_API_KEY",
	oracle.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Load reads configuration. Values in envFiles fill in variables the process
// environment leaves unset or empty; with no envFiles an optional ".env" in
// the working directory is used.
func Load(envFiles ...string) (*Config, error) {
	fileValues := map[string]string{}
	optional := len(envFiles) == 0
	if optional {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		values, err := godotenv.Read(path)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("config.Load: reading %s: %w", path, err)
		}
		for k, v := range values {
			if _, seen := fileValues[k]; !seen {
				fileValues[k] = v
			}
		}
	}

	e := env{file: fileValues}
	cfg := &Config{
		Port:            e.str("PORT", "8080"),
		LogLevel:        e.str("LOG_LEVEL", "info"),
		GCSBucket:       e.str("GCS_BUCKET", ""),
		BigQueryProject: e.str("BQ_PROJECT", ""),
		TaxRulesFile:    e.str("TAX_RULES_FILE", ""),
		APIKey:          e.str("API_KEY", ""),
		DefaultRisk:     e.floatVal("DEFAULT_RISK", 50),
		JobWorkers:      e.intVal("JOB_WORKERS", 2),
		JobMaxRetries:   e.intVal("JOB_MAX_RETRIES", 0),
	}

	provider := strings.ToLower(e.str("ORACLE_PROVIDER", oracle.ProviderSarvam))
	cfg.Oracle = oracle.Settings{
		Provider: provider,
		Model:    e.str("ORACLE_MODEL", ""),
		BaseURL:  e.str("ORACLE_BASE_URL", ""),
		APIKey:   e.str(providerKeys[provider], ""),
	}

	defaults := narrative.DefaultTimeouts()
	cfg.Timeouts = narrative.Timeouts{
		Facts:     e.duration("FACTS_TIMEOUT", defaults.Facts),
		LifeEvent: e.duration("LIFE_EVENT_TIMEOUT", defaults.LifeEvent),
		Advisory:  e.duration("ADVISORY_TIMEOUT", defaults.Advisory),
		Explain:   e.duration("EXPLAIN_TIMEOUT", defaults.Explain),
		Chat:      e.duration("CHAT_TIMEOUT", defaults.Chat),
	}

	if err := e.err(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.DefaultRisk < 0 || cfg.DefaultRisk > 100 {
		return nil, fmt.Errorf("config.Load: DEFAULT_RISK must be between 0 and 100, got %v", cfg.DefaultRisk)
	}
	return cfg, nil
}

// Offline reports whether narrative sections will use their fallbacks.
func (c *Config) Offline() bool {
	return c.Oracle.Provider == oracle.ProviderNone || c.Oracle.APIKey == ""
}

// env resolves variables and collects parse errors.
type env struct {
	file map[string]string
	errs []error
}

func (e *env) lookup(key string) string {
	if key == "" {
		return ""
	}
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(e.file[key])
}

func (e *env) str(key, def string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return def
}

func (e *env) intVal(key string, def int) int {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (e *env) floatVal(key string, def float64) float64 {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

// duration accepts Go durations ("45s") or whole seconds ("45").
func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (e *env) err() error {
	return errors.Join(e.errs...)
}
