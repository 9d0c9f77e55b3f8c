// Package config resolves settings from defaults, a TOML file, a .env file,
// and SKETCHQUIZ_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/sketchquiz/internal/quiz"
	"github.com/abhisek/sketchquiz/internal/workspace"
)

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Questions          int           `validate:"gte=1"`
	TimeLimit          time.Duration `validate:"gte=1s"`
	PollInterval       time.Duration `validate:"gte=10ms"`
	RecognitionDelay   time.Duration `validate:"gte=0s"`
	RecognitionTimeout time.Duration `validate:"gte=0s"`
	Pool               []string      `validate:"min=1,unique,dive,required,excludesall=/"`

	Workspace    string `validate:"required"`
	ImagesDir    string
	AnnotatedDir string
	ResultLog    string
	ImageExt     string `validate:"oneof=png jpg"`

	// DBPath empty means the store's default location.
	DBPath   string
	LogFile  string
	LogLevel string `validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Questions:    quiz.DefaultQuestions,
		TimeLimit:    quiz.DefaultTimeLimit,
		PollInterval: time.Second,
		Pool:         append([]string(nil), quiz.DefaultPool...),
		Workspace:    DefaultWorkspace(),
		ImageExt:     workspace.DefaultExt,
		LogFile:      DefaultLogFile(),
		LogLevel:     "info",
	}
}

// Validate checks field constraints and that the pool can fill a session.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := quiz.ValidatePool(c.Pool); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Questions > len(c.Pool) {
		return fmt.Errorf("invalid configuration: %w", &quiz.InsufficientPoolError{
			Requested: c.Questions, Available: len(c.Pool),
		})
	}
	return nil
}

// Layout resolves workspace paths. Relative overrides are taken relative
// to the workspace root.
func (c *Config) Layout() workspace.Layout {
	l := workspace.New(c.Workspace)
	if c.ImagesDir != "" {
		l.ImagesDir = c.resolve(c.ImagesDir)
	}
	if c.AnnotatedDir != "" {
		l.AnnotatedDir = c.resolve(c.AnnotatedDir)
	}
	if c.ResultLog != "" {
		l.LogPath = c.resolve(c.ResultLog)
	}
	if c.ImageExt != "" {
		l.Ext = c.ImageExt
	}
	return l
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Workspace, p)
}
