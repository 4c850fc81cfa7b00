// Copyright 2025 Studyboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("bridge: invalid config")

// Environment overrides applied by LoadConfig.
const (
	EnvLogLevel  = "BRIDGE_LOG_LEVEL"
	EnvBlockSize = "BRIDGE_BLOCK_SIZE"
)

// Config holds the bridge settings.
type Config struct {
	// LogLevel is a zerolog level name: trace, debug, info, warn, error, disabled.
	LogLevel string `yaml:"log_level"`

	// BlockSize is the number of weights per block used by QuantizeBlocks.
	// Zero quantizes the whole vector as one block.
	BlockSize int `yaml:"block_size"`

	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		BlockSize:        0,
		MetricsNamespace: "studyboard_bridge",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and then applies the
// BRIDGE_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvBlockSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvBlockSize, v, err)
		}
		cfg.BlockSize = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("%w: block_size must be >= 0, got %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.MetricsNamespace == "" {
		return fmt.Errorf("%w: metrics_namespace is empty", ErrInvalidConfig)
	}
	return nil
}

func (c Config) level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return lvl, nil
}
