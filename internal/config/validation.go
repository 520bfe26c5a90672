package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *ValidationErrors) add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// oneOf reports whether v is empty or one of allowed.
func oneOf(v string, allowed ...string) bool {
	if v == "" {
		return true
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Validate checks the configuration for required fields and valid values.
// The store section is only checked when the store is enabled.
func (c *Config) Validate() error {
	var errs ValidationErrors

	c.validateTaxonomy(&errs)
	c.validateInput(&errs)
	c.validateOutput(&errs)
	c.validatePreprocess(&errs)
	c.validateClassify(&errs)
	if c.Processing.Workers < 0 {
		errs.add("processing.workers", "workers cannot be negative")
	}
	if c.Store.Enabled {
		c.validateStore(&errs)
	}
	c.validateLogging(&errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateTaxonomy(errs *ValidationErrors) {
	if c.Taxonomy.Path == "" {
		errs.add("taxonomy.path", "path is required")
	}
	if !oneOf(c.Taxonomy.DuplicatePolicy, "last", "first") {
		errs.add("taxonomy.duplicate_policy", "duplicate_policy must be 'last' or 'first'")
	}
}

func (c *Config) validateInput(errs *ValidationErrors) {
	if c.Input.Path == "" {
		errs.add("input.path", "path is required")
	}
	validateDelimiter(errs, "input.delimiter", c.Input.Delimiter)
	if len(c.Input.TimestampLayouts) == 0 {
		errs.add("input.timestamp_layouts", "at least one timestamp layout is required")
	}
	if c.Input.Location != "" {
		if _, err := time.LoadLocation(c.Input.Location); err != nil {
			errs.add("input.location", fmt.Sprintf("unknown location %q", c.Input.Location))
		}
	}
}

func (c *Config) validateOutput(errs *ValidationErrors) {
	if !oneOf(c.Output.Format, "csv", "eventlog") {
		errs.add("output.format", "format must be 'csv' or 'eventlog'")
	}
	validateDelimiter(errs, "output.delimiter", c.Output.Delimiter)
}

func (c *Config) validatePreprocess(errs *ValidationErrors) {
	if c.Preprocess.MaxDurationSeconds <= c.Preprocess.MinDurationSeconds {
		errs.add("preprocess.max_duration_seconds", "max_duration_seconds must be greater than min_duration_seconds")
	}
}

func (c *Config) validateClassify(errs *ValidationErrors) {
	if !oneOf(c.Classify.DetailMode, "simple", "rich") {
		errs.add("classify.detail_mode", "detail_mode must be 'simple' or 'rich'")
	}
	for key, label := range c.Classify.Overrides {
		field := "classify.overrides." + key
		if _, err := strconv.ParseInt(key, 10, 64); err != nil {
			errs.add(field, "override key must be an integer movement id")
		}
		if strings.TrimSpace(label) == "" {
			errs.add(field, "override label cannot be empty")
		}
	}
}

func (c *Config) validateStore(errs *ValidationErrors) {
	s := c.Store
	switch s.Driver {
	case "sqlite":
		if s.Path == "" {
			errs.add("store.path", "path is required for the sqlite driver")
		}
	case "mysql":
		if s.Host == "" {
			errs.add("store.host", "host is required for the mysql driver")
		}
		if s.Port <= 0 || s.Port > 65535 {
			errs.add("store.port", "port must be between 1 and 65535")
		}
		if s.User == "" {
			errs.add("store.user", "user is required for the mysql driver")
		}
		if s.Database == "" {
			errs.add("store.database", "database name is required for the mysql driver")
		}
		if !oneOf(s.TLS, "disable", "preferred", "required") {
			errs.add("store.tls", "tls must be 'disable', 'preferred', or 'required'")
		}
	default:
		errs.add("store.driver", "driver must be 'mysql' or 'sqlite'")
	}

	if s.Table == "" {
		errs.add("store.table", "table is required")
	}
	if s.BatchSize <= 0 {
		errs.add("store.batch_size", "batch_size must be positive")
	}
	if !oneOf(s.Verify, "count", "sha256", "skip") {
		errs.add("store.verify", "verify must be 'count', 'sha256', or 'skip'")
	}
	if s.MaxConnections < 0 {
		errs.add("store.max_connections", "max_connections cannot be negative")
	}
}

func (c *Config) validateLogging(errs *ValidationErrors) {
	if !oneOf(c.Logging.Level, "debug", "info", "warn", "error") {
		errs.add("logging.level", "level must be 'debug', 'info', 'warn', or 'error'")
	}
	if !oneOf(c.Logging.Format, "json", "text") {
		errs.add("logging.format", "format must be 'json' or 'text'")
	}
}

// validateDelimiter accepts an empty value (the default comma) or a single rune.
func validateDelimiter(errs *ValidationErrors, field, delim string) {
	if delim == "" {
		return
	}
	r, size := utf8.DecodeRuneInString(delim)
	if size != len(delim) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		errs.add(field, "delimiter must be a single character other than quote or newline")
	}
}

// DelimiterRune returns the first rune of delim, or ',' when delim is empty.
func DelimiterRune(delim string) rune {
	if delim == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(delim)
	return r
}
