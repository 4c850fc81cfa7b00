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

// Package bridge is the entry point the application layer uses to reach the
// native kernels. It owns the lifecycle (New, Initialize, Close), the
// passthrough optimization hooks and the weight quantization front door.
//
// Quantization does not need an initialized bridge; the optimization hooks do.
package bridge

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/studyboard/bridge/accel"
	"github.com/studyboard/bridge/internal/cpuinfo"
	"github.com/studyboard/bridge/quantize"
)

var (
	// ErrNotInitialized is returned by hooks that run before Initialize.
	ErrNotInitialized = errors.New("bridge: not initialized")

	// ErrInvalidDimensions is returned for non-positive image dimensions.
	ErrInvalidDimensions = errors.New("bridge: invalid image dimensions")
)

// rgbChannels is the number of bytes per pixel in generated images.
const rgbChannels = 3

// Bridge connects the application layer to the quantization kernels.
// It is safe for concurrent use.
type Bridge struct {
	cfg         Config
	log         zerolog.Logger
	reg         prometheus.Registerer
	metrics     *metrics
	initialized atomic.Bool
	usage       atomic.Int64
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger replaces the default stderr logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bridge) {
		b.log = l
	}
}

// WithRegisterer registers the bridge metrics with reg. Without it the
// metrics are collected but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(b *Bridge) {
		b.reg = reg
	}
}

// New validates cfg and returns an uninitialized bridge.
func New(cfg Config, opts ...Option) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lvl, _ := cfg.level()

	b := &Bridge{
		cfg: cfg,
		log: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.Level(lvl).With().Str("component", "bridge").Logger()

	b.metrics = newMetrics(cfg.MetricsNamespace, func() float64 {
		return float64(b.usage.Load())
	})
	if b.reg != nil {
		if err := b.metrics.register(b.reg); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return b, nil
}

// Config returns the configuration the bridge was created with.
func (b *Bridge) Config() Config {
	return b.cfg
}

// Initialize prepares the bridge for the optimization hooks. Calling it more
// than once is harmless.
func (b *Bridge) Initialize() error {
	if b.initialized.Swap(true) {
		return nil
	}
	report := cpuinfo.Collect()
	b.log.Info().
		Str("dispatch", accel.CurrentName()).
		Int("width", accel.CurrentWidth()).
		Bool("no_simd", accel.NoSimdEnv()).
		Strs("features", report.Enabled()).
		Msg("initialized")
	b.metrics.observe(opInitialize, nil)
	return nil
}

// Initialized reports whether Initialize has been called.
func (b *Bridge) Initialized() bool {
	return b.initialized.Load()
}

// OptimizeTextInference is the text hook. It currently returns input
// unchanged; embeddings are accepted for interface stability.
func (b *Bridge) OptimizeTextInference(input string, embeddings []float32) (string, error) {
	if !b.Initialized() {
		b.metrics.observe(opText, ErrNotInitialized)
		b.log.Error().Str("op", opText).Msg("not initialized")
		return "", ErrNotInitialized
	}
	b.log.Debug().
		Int("input_bytes", len(input)).
		Int("embeddings", len(embeddings)).
		Msg("optimizing text inference")
	b.metrics.observe(opText, nil)
	return input, nil
}

// OptimizeImageGeneration is the image hook. It returns a zeroed RGB buffer of
// width*height*3 bytes. Dimensions must be positive and their buffer size must
// fit in an int.
func (b *Bridge) OptimizeImageGeneration(latents []float32, width, height int) ([]byte, error) {
	if !b.Initialized() {
		b.metrics.observe(opImage, ErrNotInitialized)
		b.log.Error().Str("op", opImage).Msg("not initialized")
		return nil, ErrNotInitialized
	}
	if width <= 0 || height <= 0 || width > math.MaxInt/rgbChannels/height {
		err := fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
		b.metrics.observe(opImage, err)
		return nil, err
	}
	b.log.Debug().
		Int("width", width).
		Int("height", height).
		Int("latents", len(latents)).
		Msg("optimizing image generation")

	out := make([]byte, width*height*rgbChannels)
	b.usage.Add(int64(len(out)))
	b.metrics.observe(opImage, nil)
	return out, nil
}

// ClearCache resets the tracked memory usage.
func (b *Bridge) ClearCache() {
	b.usage.Store(0)
	b.metrics.observe(opClearCache, nil)
	b.log.Debug().Msg("cache cleared")
}

// MemoryUsage returns the number of bytes handed out since the last
// ClearCache.
func (b *Bridge) MemoryUsage() int64 {
	return b.usage.Load()
}

// QuantizeWeights quantizes weights to int8 with per-vector min/max scaling.
func (b *Bridge) QuantizeWeights(weights []float32) (quantize.Vector, error) {
	v, err := quantize.Quantize(weights)
	b.metrics.observe(opQuantize, err)
	if err != nil {
		b.log.Warn().Err(err).Int("count", len(weights)).Msg("quantize failed")
		return quantize.Vector{}, err
	}
	b.track(v)
	b.log.Debug().
		Int("count", v.Len()).
		Float32("min", v.Min).
		Float32("scale", v.Scale).
		Msg("quantized weights")
	return v, nil
}

// DequantizeWeights reconstructs float32 weights from v.
func (b *Bridge) DequantizeWeights(v quantize.Vector) []float32 {
	out := v.Dequantize()
	b.metrics.observe(opDequantize, nil)
	b.log.Debug().Int("count", len(out)).Msg("dequantized weights")
	return out
}

// QuantizeBlocks quantizes weights in blocks of Config.BlockSize elements.
// A zero block size yields a single block covering the whole vector.
func (b *Bridge) QuantizeBlocks(weights []float32) ([]quantize.Vector, error) {
	size := b.cfg.BlockSize
	if size == 0 {
		size = max(len(weights), 1)
	}
	blocks, err := quantize.QuantizeBlocks(weights, size)
	b.metrics.observe(opBlocks, err)
	if err != nil {
		b.log.Warn().Err(err).Int("count", len(weights)).Msg("block quantize failed")
		return nil, err
	}
	for _, v := range blocks {
		b.track(v)
	}
	b.log.Debug().
		Int("count", len(weights)).
		Int("blocks", len(blocks)).
		Int("block_size", size).
		Msg("quantized weight blocks")
	return blocks, nil
}

func (b *Bridge) track(v quantize.Vector) {
	b.usage.Add(int64(v.SizeBytes()))
	b.metrics.elements.Add(float64(v.Len()))
}

// Close unregisters the metrics and marks the bridge uninitialized.
func (b *Bridge) Close() error {
	if b.reg != nil {
		b.metrics.unregister(b.reg)
	}
	b.initialized.Store(false)
	b.usage.Store(0)
	b.log.Debug().Msg("closed")
	return nil
}
