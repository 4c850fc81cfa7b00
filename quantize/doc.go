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

// Package quantize converts float32 weight vectors to int8 and back using
// per-vector linear min/max scaling.
//
// # Core Functions
//
//   - Quantize(weights []float32) (Vector, error)
//   - Dequantize(data []int8, min, scale float32) []float32
//
// # Quantization
//
// For a vector with minimum min and maximum max:
//
//	scale   = (max - min) / 255
//	data[i] = clamp(round((weights[i] - min) / scale) - 128, -128, 127)
//
// Rounding is half away from zero. A constant vector (max == min) has no
// range to spread over 256 levels; it quantizes to all zeros with scale 0.
//
// # Dequantization
//
// The min and scale used for quantization are carried in [Vector], so the
// inverse uses exactly the same parameters:
//
//	weights[i] = (data[i] + 128) * scale + min
//
// The reconstruction error of every element is bounded by one quantization
// step (scale).
//
// # Blocks
//
// [QuantizeBlocks] applies the same transform independently to consecutive
// fixed-size blocks, so an outlier only widens the scale of its own block.
//
// # Example Usage
//
//	v, err := quantize.Quantize([]float32{-1, 0, 0.5, 1})
//	if err != nil {
//		return err
//	}
//	restored := v.Dequantize()
//
// All functions are pure and safe for concurrent use.
package quantize
