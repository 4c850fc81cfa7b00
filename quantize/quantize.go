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

package quantize

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for weight vectors that cannot be quantized:
// empty vectors, non-finite elements, or a non-positive block size.
var ErrInvalidInput = errors.New("quantize: invalid input")

// levels is the number of representable int8 steps above the minimum.
const levels = 255

// Vector is a quantized weight vector together with the parameters needed to
// reconstruct it. Scale is zero for a constant source vector.
type Vector struct {
	Data  []int8
	Min   float32
	Scale float32
}

// Len returns the number of quantized elements.
func (v Vector) Len() int {
	return len(v.Data)
}

// Max returns the largest value representable with v's parameters.
func (v Vector) Max() float32 {
	return v.Min + levels*v.Scale
}

// SizeBytes returns the storage needed for v: one byte per element plus the
// two float32 parameters.
func (v Vector) SizeBytes() int {
	return len(v.Data) + 8
}

// Dequantize reconstructs the float32 weights from v.
func (v Vector) Dequantize() []float32 {
	return Dequantize(v.Data, v.Min, v.Scale)
}

// Quantize maps weights to int8 using the vector's own min/max range.
// The caller keeps ownership of weights; it is not modified.
func Quantize(weights []float32) (Vector, error) {
	if len(weights) == 0 {
		return Vector{}, fmt.Errorf("%w: empty weight vector", ErrInvalidInput)
	}
	for i, w := range weights {
		if math.IsNaN(float64(w)) || math.IsInf(float64(w), 0) {
			return Vector{}, fmt.Errorf("%w: non-finite weight %v at index %d", ErrInvalidInput, w, i)
		}
	}

	minVal, maxVal := BaseMinMax(weights)
	out := Vector{
		Data: make([]int8, len(weights)),
		Min:  minVal,
	}
	if maxVal == minVal {
		return out, nil
	}

	// The range is taken in float64 so that the widest finite float32 span
	// still yields a finite scale.
	out.Scale = float32((float64(maxVal) - float64(minVal)) / levels)
	BaseQuantizeInt8(weights, out.Data, out.Min, out.Scale)
	return out, nil
}

// Dequantize maps int8 data back to float32 with the min and scale that were
// returned by Quantize.
func Dequantize(data []int8, minVal, scale float32) []float32 {
	out := make([]float32, len(data))
	BaseDequantizeInt8(data, out, minVal, scale)
	return out
}

// MaxAbsError returns max(|a[i] - b[i]|) over the common prefix of a and b.
func MaxAbsError(a, b []float32) float32 {
	var worst float64
	for i := range min(len(a), len(b)) {
		worst = max(worst, math.Abs(float64(a[i])-float64(b[i])))
	}
	return float32(worst)
}
