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
	"math"

	"github.com/studyboard/bridge/accel"
)

// BaseMinMax returns the smallest and largest value of input.
// It returns (0, 0) for empty input.
func BaseMinMax(input []float32) (minVal, maxVal float32) {
	n := len(input)
	if n == 0 {
		return 0, 0
	}
	minVal, maxVal = input[0], input[0]

	lanes := accel.MaxLanes[float32]()
	i := 0
	if n >= lanes {
		minVec := accel.Load(input)
		maxVec := minVec
		for i = lanes; i+lanes <= n; i += lanes {
			v := accel.Load(input[i:])
			minVec = accel.Min(minVec, v)
			maxVec = accel.Max(maxVec, v)
		}
		minVal = accel.ReduceMin(minVec)
		maxVal = accel.ReduceMax(maxVec)
	}

	// Scalar tail
	for ; i < n; i++ {
		minVal = min(minVal, input[i])
		maxVal = max(maxVal, input[i])
	}
	return minVal, maxVal
}

// BaseQuantizeInt8 converts float32 values to int8.
//
//	output[i] = int8(clamp(round((input[i] - min) / scale), 0, 255) - 128)
//
// The difference is taken in float64, where input[i] - min cannot overflow.
// A non-positive scale writes zeros. Only min(len(input), len(output))
// elements are processed.
func BaseQuantizeInt8(input []float32, output []int8, min, scale float32) {
	n := len(input)
	if len(output) < n {
		n = len(output)
	}
	if n == 0 {
		return
	}
	if !(scale > 0) {
		clear(output[:n])
		return
	}

	lanes := accel.MaxLanes[float64]()
	minVec := accel.Set(float64(min))
	scaleVec := accel.Set(float64(scale))
	zeroVec := accel.Zero[float64]()
	max255Vec := accel.Set[float64](255)

	buf := make([]float64, lanes)

	i := 0
	for ; i+lanes <= n; i += lanes {
		// Promote float32 → float64 into buffer
		for j := range lanes {
			buf[j] = float64(input[i+j])
		}

		// (input - min) / scale, rounded into [0, 255]
		level := accel.Clamp(accel.Round(accel.Div(accel.Sub(accel.Load(buf), minVec), scaleVec)), zeroVec, max255Vec)

		accel.Store(level, buf)
		for j := range lanes {
			output[i+j] = int8(int32(buf[j]) - 128)
		}
	}

	// Scalar tail
	for ; i < n; i++ {
		output[i] = quantizeScalar(input[i], min, scale)
	}
}

func quantizeScalar(v, min, scale float32) int8 {
	level := math.Round((float64(v) - float64(min)) / float64(scale))
	if level < 0 {
		level = 0
	} else if level > 255 {
		level = 255
	}
	return int8(int32(level) - 128)
}

// BaseDequantizeInt8 converts int8 values back to float32.
//
//	output[i] = float32((input[i] + 128) * scale + min)
//
// The product and sum are taken in float64 and the result is clamped to the
// finite float32 range, so a scale spanning the whole float32 range still
// restores finite values. Only min(len(input), len(output)) elements are
// processed.
func BaseDequantizeInt8(input []int8, output []float32, min, scale float32) {
	n := len(input)
	if len(output) < n {
		n = len(output)
	}
	if n == 0 {
		return
	}

	lanes := accel.MaxLanes[float64]()
	minVec := accel.Set(float64(min))
	scaleVec := accel.Set(float64(scale))
	loVec := accel.Set[float64](-math.MaxFloat32)
	hiVec := accel.Set[float64](math.MaxFloat32)

	buf := make([]float64, lanes)

	i := 0
	for ; i+lanes <= n; i += lanes {
		// Promote int8 → float64 level into buffer
		for j := range lanes {
			buf[j] = float64(int32(input[i+j]) + 128)
		}

		v := accel.Clamp(accel.MulAdd(accel.Load(buf), scaleVec, minVec), loVec, hiVec)
		accel.Store(v, buf)
		for j := range lanes {
			output[i+j] = float32(buf[j])
		}
	}

	// Scalar tail
	for ; i < n; i++ {
		output[i] = dequantizeScalar(input[i], min, scale)
	}
}

func dequantizeScalar(q int8, min, scale float32) float32 {
	v := float64(int32(q)+128)*float64(scale) + float64(min)
	if v > math.MaxFloat32 {
		v = math.MaxFloat32
	} else if v < -math.MaxFloat32 {
		v = -math.MaxFloat32
	}
	return float32(v)
}
