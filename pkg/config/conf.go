package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600
)

// Config holds every tunable of the assessment engine. The defaults match
// the standard grading policy; a config file in the app home dir overrides
// them for all runs.
type Config struct {
	SamplePoints int `yaml:"samplePoints"`

	Grading struct {
		Thresholds struct {
			A float64 `yaml:"a"`
			B float64 `yaml:"b"`
			C float64 `yaml:"c"`
			D float64 `yaml:"d"`
		} `yaml:"thresholds"`
		MinorOutlierThreshold float64 `yaml:"minorOutlierThreshold"`
		MinorOutlierPenalty   float64 `yaml:"minorOutlierPenalty"`
		MajorOutlierThreshold float64 `yaml:"majorOutlierThreshold"`
		MajorOutlierPenalty   float64 `yaml:"majorOutlierPenalty"`
	} `yaml:"grading"`

	Suspicion struct {
		ExactSizeWeight int     `yaml:"exactSizeWeight"`
		NearSizeWeight  int     `yaml:"nearSizeWeight"`
		NearSizeWindow  int64   `yaml:"nearSizeWindowBytes"`
		HashWeight      int     `yaml:"hashWeight"`
		TimeWeight      int     `yaml:"timeWeight"`
		TimeWindow      float64 `yaml:"timeWindowSeconds"`
		Floor           int     `yaml:"floor"`
	} `yaml:"suspicion"`
}

func getDefaultConfig() *Config {
	c := &Config{SamplePoints: 2048}
	c.Grading.Thresholds.A = 0.1
	c.Grading.Thresholds.B = 0.5
	c.Grading.Thresholds.C = 1.0
	c.Grading.Thresholds.D = 2.0
	c.Grading.MinorOutlierThreshold = 3.0
	c.Grading.MinorOutlierPenalty = 5
	c.Grading.MajorOutlierThreshold = 5.0
	c.Grading.MajorOutlierPenalty = 10
	c.Suspicion.ExactSizeWeight = 60
	c.Suspicion.NearSizeWeight = 35
	c.Suspicion.NearSizeWindow = 1024
	c.Suspicion.HashWeight = 100
	c.Suspicion.TimeWeight = 40
	c.Suspicion.TimeWindow = 300
	c.Suspicion.Floor = 70
	return c
}

// Save writes the config file into the given directory.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads the app config from a directory, writing the default
// config there first if none exists yet.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(dirPath, getDefaultConfig()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	j, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %v", j)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file %v", j)
	}
	return &c, nil
}

// GetOrCreateHomeDir returns the app home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
