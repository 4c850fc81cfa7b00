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
	"math"
	"math/rand/v2"
	"testing"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		name      string
		input     []float32
		wantData  []int8
		wantMin   float32
		wantScale float32
	}{
		{
			name:      "extremes map to int8 bounds",
			input:     []float32{0, 255},
			wantData:  []int8{-128, 127},
			wantMin:   0,
			wantScale: 1,
		},
		{
			name:      "constant vector",
			input:     []float32{5, 5, 5},
			wantData:  []int8{0, 0, 0},
			wantMin:   5,
			wantScale: 0,
		},
		{
			name:      "single element",
			input:     []float32{-3.5},
			wantData:  []int8{0},
			wantMin:   -3.5,
			wantScale: 0,
		},
		{
			name:      "identity steps",
			input:     []float32{0, 1, 2, 127, 128, 255},
			wantData:  []int8{-128, -127, -126, -1, 0, 127},
			wantMin:   0,
			wantScale: 1,
		},
		{
			name:      "rounding half away from zero",
			input:     []float32{0, 0.4, 0.5, 1.5, 255},
			wantData:  []int8{-128, -128, -127, -126, 127},
			wantMin:   0,
			wantScale: 1,
		},
		{
			name:      "negative range",
			input:     []float32{-255, -127.5, 0},
			wantData:  []int8{-128, 0, 127},
			wantMin:   -255,
			wantScale: 1,
		},
		{
			name: "non-aligned length 19",
			input: func() []float32 {
				s := make([]float32, 19)
				for i := range s {
					s[i] = float32(i * 255 / 18)
				}
				s[18] = 255
				return s
			}(),
			wantData: func() []int8 {
				s := make([]int8, 19)
				for i := range s {
					s[i] = int8(i*255/18 - 128)
				}
				s[18] = 127
				return s
			}(),
			wantMin:   0,
			wantScale: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quantize(tt.input)
			if err != nil {
				t.Fatalf("Quantize: %v", err)
			}
			if got.Min != tt.wantMin {
				t.Errorf("Min = %f, want %f", got.Min, tt.wantMin)
			}
			if math.Abs(float64(got.Scale-tt.wantScale)) > 1e-6 {
				t.Errorf("Scale = %f, want %f", got.Scale, tt.wantScale)
			}
			if got.Len() != len(tt.wantData) {
				t.Fatalf("length mismatch: got %d, want %d", got.Len(), len(tt.wantData))
			}
			for i := range got.Data {
				if got.Data[i] != tt.wantData[i] {
					t.Errorf("index %d: got %d, want %d", i, got.Data[i], tt.wantData[i])
				}
			}
		})
	}
}

func TestQuantizeInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"nil", nil},
		{"empty", []float32{}},
		{"NaN", []float32{1, float32(math.NaN()), 2}},
		{"+Inf", []float32{float32(math.Inf(1))}},
		{"-Inf", []float32{0, float32(math.Inf(-1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Quantize(tt.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Quantize(%v) error = %v, want ErrInvalidInput", tt.input, err)
			}
		})
	}
}

func TestQuantizeDoesNotModifyInput(t *testing.T) {
	input := []float32{3, -1, 2.25, 8}
	orig := append([]float32(nil), input...)
	if _, err := Quantize(input); err != nil {
		t.Fatal(err)
	}
	for i := range input {
		if input[i] != orig[i] {
			t.Errorf("input[%d] changed: %f -> %f", i, orig[i], input[i])
		}
	}
}

func TestDequantize(t *testing.T) {
	tests := []struct {
		name  string
		input []int8
		min   float32
		scale float32
		want  []float32
	}{
		{
			name:  "empty",
			input: []int8{},
			min:   0, scale: 1,
			want: []float32{},
		},
		{
			name:  "identity scale",
			input: []int8{-128, -127, 0, 127},
			min:   0, scale: 1,
			want: []float32{0, 1, 128, 255},
		},
		{
			name:  "zero scale restores min",
			input: []int8{0, 0, 0},
			min:   5, scale: 0,
			want: []float32{5, 5, 5},
		},
		{
			name:  "normalize -1 to 1",
			input: []int8{-128, 127},
			min:   -1, scale: 2.0 / 255.0,
			want: []float32{-1, 1},
		},
		{
			name: "non-aligned length 21",
			input: func() []int8 {
				s := make([]int8, 21)
				for i := range s {
					s[i] = int8(i*12 - 128)
				}
				return s
			}(),
			min: 10, scale: 0.5,
			want: func() []float32 {
				s := make([]float32, 21)
				for i := range s {
					s[i] = 10 + float32(i*12)*0.5
				}
				return s
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dequantize(tt.input, tt.min, tt.scale)
			if len(got) != len(tt.want) {
				t.Fatalf("length mismatch: got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(float64(got[i]-tt.want[i])) > 1e-5 {
					t.Errorf("index %d: got %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRoundTripWithinOneStep(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for _, size := range []int{1, 2, 3, 7, 16, 31, 64, 100, 1000} {
		for trial := range 20 {
			weights := make([]float32, size)
			spread := float32(rng.ExpFloat64() * 10)
			for i := range weights {
				weights[i] = (rng.Float32()*2 - 1) * spread
			}

			v, err := Quantize(weights)
			if err != nil {
				t.Fatalf("size %d trial %d: %v", size, trial, err)
			}
			if v.Len() != size {
				t.Fatalf("size %d: got %d quantized elements", size, v.Len())
			}

			restored := v.Dequantize()
			if len(restored) != size {
				t.Fatalf("size %d: got %d restored elements", size, len(restored))
			}
			if v.Scale == 0 {
				continue
			}
			if e := MaxAbsError(restored, weights); e > v.Scale {
				t.Errorf("size %d trial %d: max error %g exceeds scale %g", size, trial, e, v.Scale)
			}
		}
	}

	// Ranges wider than float32 itself must still restore finite values.
	wide := [][]float32{
		{-math.MaxFloat32, math.MaxFloat32},
		{-3e38, 0, 3e38},
		{-math.MaxFloat32, 0, 1, math.MaxFloat32},
		{3e38, -3e38, 1e38, -1e38, 0, 2e38, -2e38, 5e37, -5e37, 3e38, -3e38, 1, -1, 7e37, -7e37, 0, 3e38},
	}
	for n, weights := range wide {
		v, err := Quantize(weights)
		if err != nil {
			t.Fatalf("wide input %d: %v", n, err)
		}
		restored := v.Dequantize()
		for i, r := range restored {
			if math.IsInf(float64(r), 0) || math.IsNaN(float64(r)) {
				t.Errorf("wide input %d: restored[%d] = %v", n, i, r)
			}
		}
		if e := MaxAbsError(restored, weights); e > v.Scale {
			t.Errorf("wide input %d: max error %g exceeds scale %g", n, e, v.Scale)
		}
	}
}

func TestBaseDequantizeInt8Saturates(t *testing.T) {
	// 255 * MaxFloat32 overflows float32; the result clamps instead.
	input := make([]int8, 19)
	for i := range input {
		input[i] = 127
	}
	output := make([]float32, len(input))
	BaseDequantizeInt8(input, output, 0, math.MaxFloat32)
	for i, got := range output {
		if got != math.MaxFloat32 {
			t.Errorf("index %d: got %v, want MaxFloat32", i, got)
		}
	}

	BaseDequantizeInt8([]int8{-128}, output, -math.MaxFloat32, math.MaxFloat32)
	if output[0] != -math.MaxFloat32 {
		t.Errorf("got %v, want -MaxFloat32", output[0])
	}
}

func TestQuantizeStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	inputs := [][]float32{
		{-math.MaxFloat32, math.MaxFloat32},
		{-math.MaxFloat32, 0, 1, math.MaxFloat32},
		{math.SmallestNonzeroFloat32, 0, -math.SmallestNonzeroFloat32},
		{1e-30, 2e-30, 3e-30},
	}
	for range 50 {
		w := make([]float32, 1+rng.IntN(200))
		for i := range w {
			w[i] = float32(rng.NormFloat64() * math.Pow(10, float64(rng.IntN(20)-10)))
		}
		inputs = append(inputs, w)
	}

	for n, w := range inputs {
		v, err := Quantize(w)
		if err != nil {
			t.Fatalf("input %d: %v", n, err)
		}
		if math.IsInf(float64(v.Scale), 0) || math.IsNaN(float64(v.Scale)) {
			t.Errorf("input %d: non-finite scale %v", n, v.Scale)
		}
		sawMin, sawMax := false, false
		for _, q := range v.Data {
			// int8 cannot leave [-128, 127]; the extremes of the input must
			// still land on the ends of the range.
			sawMin = sawMin || q == -128
			sawMax = sawMax || q == 127
		}
		if v.Scale > 0 && (!sawMin || !sawMax) {
			t.Errorf("input %d: extremes not mapped to -128/127 (min=%v max=%v)", n, sawMin, sawMax)
		}
	}
}

func TestBaseMinMax(t *testing.T) {
	tests := []struct {
		name    string
		input   []float32
		wantMin float32
		wantMax float32
	}{
		{"empty", nil, 0, 0},
		{"single", []float32{42}, 42, 42},
		{"mixed", []float32{1, 5, -2, 3}, -2, 5},
		{"max in tail", []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 99}, 0, 99},
		{"min in tail", []float32{9, 8, 7, 6, 5, 4, 3, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1, -99}, -99, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax := BaseMinMax(tt.input)
			if gotMin != tt.wantMin || gotMax != tt.wantMax {
				t.Errorf("BaseMinMax = (%f, %f), want (%f, %f)", gotMin, gotMax, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestBaseQuantizeInt8ShortOutput(t *testing.T) {
	input := []float32{0, 255, 0, 255}
	output := []int8{1, 1}
	BaseQuantizeInt8(input, output, 0, 1)
	if output[0] != -128 || output[1] != 127 {
		t.Errorf("output = %v, want [-128 127]", output)
	}

	BaseQuantizeInt8(input[:2], output, 0, 0)
	if output[0] != 0 || output[1] != 0 {
		t.Errorf("zero scale output = %v, want [0 0]", output)
	}
}

func BenchmarkQuantize(b *testing.B) {
	weights := make([]float32, 4096)
	for i := range weights {
		weights[i] = float32(math.Sin(float64(i)))
	}
	b.SetBytes(int64(len(weights) * 4))
	for b.Loop() {
		if _, err := Quantize(weights); err != nil {
			b.Fatal(err)
		}
	}
}
