package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/ClimateDash/internal/core"
	"golang.org/x/text/language"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// problems collects validation failures so they can be reported together.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var p problems

	p.check(c.Server.Port > 0 && c.Server.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	p.check(c.Upload.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(c.Upload.MaxConcurrent > 0, "INGEST_MAX_CONCURRENT must be positive")
	p.check(c.Upload.MaxWaitTime > 0, "INGEST_MAX_WAIT_TIME must be positive")
	p.check(c.Upload.Timeout > 0, "UPLOAD_TIMEOUT must be positive")

	_, err := language.Parse(c.Dataset.Locale)
	p.check(err == nil, "DATASET_LOCALE (%q) is not a valid language tag", c.Dataset.Locale)
	p.check(core.ValidEncoding(c.Dataset.SourceEncoding),
		"DATASET_SOURCE_ENCODING (%q) must be one of: utf-8, windows-1252, iso-8859-1, iso-8859-15", c.Dataset.SourceEncoding)
	p.check(c.Dataset.RankingSize > 0, "DATASET_RANKING_SIZE must be positive")
	_, okX := core.LookupMetric(c.Dataset.ScatterX)
	p.check(okX, "DATASET_SCATTER_X (%q) is not a recognized metric", c.Dataset.ScatterX)
	_, okY := core.LookupMetric(c.Dataset.ScatterY)
	p.check(okY, "DATASET_SCATTER_Y (%q) is not a recognized metric", c.Dataset.ScatterY)

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.UploadLimit > 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	p.check(slices.Contains(logLevels, strings.ToLower(c.Logging.Level)),
		"LOG_LEVEL (%q) must be one of: %s", c.Logging.Level, strings.Join(logLevels, ", "))
	p.check(slices.Contains(logFormats, strings.ToLower(c.Logging.Format)),
		"LOG_FORMAT (%q) must be one of: %s", c.Logging.Format, strings.Join(logFormats, ", "))

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// ServiceConfig converts the dataset and upload sections into core settings.
// Call it only on a validated Config.
func (c *Config) ServiceConfig() core.ServiceConfig {
	tag, err := language.Parse(c.Dataset.Locale)
	if err != nil {
		tag = language.English
	}
	x, _ := core.LookupMetric(c.Dataset.ScatterX)
	y, _ := core.LookupMetric(c.Dataset.ScatterY)

	return core.ServiceConfig{
		PreferredCountry: c.Dataset.DefaultCountry,
		Locale:           tag,
		Source: core.SourceOptions{
			Encoding: c.Dataset.SourceEncoding,
			MaxBytes: c.Upload.MaxFileSize,
		},
		MaxConcurrent: c.Upload.MaxConcurrent,
		MaxWait:       c.Upload.MaxWaitTime,
		Timeout:       c.Upload.Timeout,
		Pair:          core.MetricPair{X: x.Metric, Y: y.Metric},
		RankingSize:   c.Dataset.RankingSize,
	}
}

// String returns a safe string representation of the config for logging.
// Proxy addresses are counted, not listed.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config{Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.Timeout)
	fmt.Fprintf(&b, "Dataset: {DefaultCountry: %q, SeedPath: %q, Locale: %q, Encoding: %q}, ",
		c.Dataset.DefaultCountry, c.Dataset.SeedPath, c.Dataset.Locale, c.Dataset.SourceEncoding)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d, Upload: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.UploadLimit)
	fmt.Fprintf(&b, "Security: {TrustedProxies: %d, CSP: %v}, ", len(c.Security.TrustedProxies), c.Security.EnableCSP)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}}", c.Logging.Level, c.Logging.Format)
	return b.String()
}
