// Package config loads validator settings from a YAML file and environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/adammathes/xliffverify/pkg/logging"
	"github.com/adammathes/xliffverify/pkg/validate"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration.
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Batch      BatchConfig      `yaml:"batch"`
	Log        LogConfig        `yaml:"log"`
}

// ValidationConfig holds the settings passed to the validator.
type ValidationConfig struct {
	SourceLanguage         string   `yaml:"source_language"         env:"XLIFF_SOURCE_LANGUAGE"         env-default:"en"`
	InitialState           string   `yaml:"initial_state"           env:"XLIFF_INITIAL_STATE"           env-default:"initial"`
	UntranslatedExclusions []string `yaml:"untranslated_exclusions" env:"XLIFF_UNTRANSLATED_EXCLUSIONS" env-default:"header.application_name"`
	ReportAll              bool     `yaml:"report_all"              env:"XLIFF_REPORT_ALL"              env-default:"false"`
	MaxDiffLines           int      `yaml:"max_diff_lines"          env:"XLIFF_MAX_DIFF_LINES"          env-default:"20"`
}

// BatchConfig holds directory-run settings.
type BatchConfig struct {
	Workers        int    `yaml:"workers"         env:"XLIFF_BATCH_WORKERS"   env-default:"4"`
	MasterLanguage string `yaml:"master_language" env:"XLIFF_MASTER_LANGUAGE" env-default:"en"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"XLIFF_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"XLIFF_LOG_FORMAT" env-default:"text"`
}

// Validate performs rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Validation.SourceLanguage == "" {
		return fmt.Errorf("%w: validation.source_language must not be empty", ErrInvalid)
	}
	if c.Validation.InitialState == "" {
		return fmt.Errorf("%w: validation.initial_state must not be empty", ErrInvalid)
	}
	if c.Validation.MaxDiffLines < 0 {
		return fmt.Errorf("%w: validation.max_diff_lines must be >= 0 (got %d)", ErrInvalid, c.Validation.MaxDiffLines)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be >= 1 (got %d)", ErrInvalid, c.Batch.Workers)
	}
	if c.Batch.MasterLanguage == "" {
		return fmt.Errorf("%w: batch.master_language must not be empty", ErrInvalid)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: log.format: %v", ErrInvalid, err)
	}
	return nil
}

// Options converts the validation settings into validator options.
func (c *Config) Options(logger *slog.Logger) validate.Options {
	return validate.Options{
		SourceLanguage:         c.Validation.SourceLanguage,
		InitialState:           c.Validation.InitialState,
		UntranslatedExclusions: c.Validation.UntranslatedExclusions,
		ReportAll:              c.Validation.ReportAll,
		MaxDiffLines:           c.Validation.MaxDiffLines,
		Logger:                 logger,
	}
}

// Logger builds a logger from the log settings. Validate must have passed.
func (c *Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	return logging.InitLogger(level, format)
}
