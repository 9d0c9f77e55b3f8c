package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SKETCHQUIZ_"

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SKETCHQUIZ_* variables onto c.
func ApplyEnv(c *Config) error {
	var errs []error

	if v, ok := lookup("QUESTIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sQUESTIONS: %w", envPrefix, err))
		} else {
			c.Questions = n
		}
	}
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"TIME_LIMIT", &c.TimeLimit},
		{"POLL_INTERVAL", &c.PollInterval},
		{"RECOGNITION_DELAY", &c.RecognitionDelay},
		{"RECOGNITION_TIMEOUT", &c.RecognitionTimeout},
	} {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		dur, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, d.key, err))
			continue
		}
		*d.dst = dur
	}
	if v, ok := lookup("POOL"); ok {
		c.Pool = splitList(v)
	}

	getEnv("WORKSPACE", &c.Workspace)
	getEnv("IMAGES_DIR", &c.ImagesDir)
	getEnv("ANNOTATED_DIR", &c.AnnotatedDir)
	getEnv("RESULT_LOG", &c.ResultLog)
	getEnv("IMAGE_EXT", &c.ImageExt)
	getEnv("DB", &c.DBPath)
	getEnv("LOG_FILE", &c.LogFile)
	getEnv("LOG_LEVEL", &c.LogLevel)

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func getEnv(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
