package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields
// distinguish "unset" from zero values.
type FileConfig struct {
	Quiz      QuizConfig      `toml:"quiz"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Log       LogConfig       `toml:"log"`
	DB        *string         `toml:"db"`
}

// QuizConfig maps session settings.
type QuizConfig struct {
	Questions          *int     `toml:"questions"`
	TimeLimit          *string  `toml:"time-limit"`
	PollInterval       *string  `toml:"poll-interval"`
	RecognitionDelay   *string  `toml:"recognition-delay"`
	RecognitionTimeout *string  `toml:"recognition-timeout"`
	Pool               []string `toml:"pool"`
}

// WorkspaceConfig maps the classifier handoff locations.
type WorkspaceConfig struct {
	Root         *string `toml:"root"`
	ImagesDir    *string `toml:"images-dir"`
	AnnotatedDir *string `toml:"annotated-dir"`
	ResultLog    *string `toml:"result-log"`
	ImageExt     *string `toml:"image-ext"`
}

// LogConfig maps application logging.
type LogConfig struct {
	File  *string `toml:"file"`
	Level *string `toml:"level"`
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return fc, nil
}

// Apply overlays the set fields of fc onto c.
func (fc FileConfig) Apply(c *Config) error {
	q := fc.Quiz
	if q.Questions != nil {
		c.Questions = *q.Questions
	}
	for _, d := range []struct {
		key string
		val *string
		dst *time.Duration
	}{
		{"quiz.time-limit", q.TimeLimit, &c.TimeLimit},
		{"quiz.poll-interval", q.PollInterval, &c.PollInterval},
		{"quiz.recognition-delay", q.RecognitionDelay, &c.RecognitionDelay},
		{"quiz.recognition-timeout", q.RecognitionTimeout, &c.RecognitionTimeout},
	} {
		if d.val == nil {
			continue
		}
		v, err := time.ParseDuration(*d.val)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}
	if q.Pool != nil {
		c.Pool = q.Pool
	}

	w := fc.Workspace
	setString(&c.Workspace, w.Root)
	setString(&c.ImagesDir, w.ImagesDir)
	setString(&c.AnnotatedDir, w.AnnotatedDir)
	setString(&c.ResultLog, w.ResultLog)
	setString(&c.ImageExt, w.ImageExt)

	setString(&c.LogFile, fc.Log.File)
	setString(&c.LogLevel, fc.Log.Level)
	setString(&c.DBPath, fc.DB)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
