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

import "fmt"

// QuantizeBlocks splits weights into consecutive blocks of blockSize elements
// and quantizes each one with its own min and scale. The final block holds the
// remainder and may be shorter.
func QuantizeBlocks(weights []float32, blockSize int) ([]Vector, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrInvalidInput, blockSize)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: empty weight vector", ErrInvalidInput)
	}

	blocks := make([]Vector, 0, (len(weights)+blockSize-1)/blockSize)
	for start := 0; start < len(weights); start += blockSize {
		end := min(start+blockSize, len(weights))
		v, err := Quantize(weights[start:end])
		if err != nil {
			return nil, fmt.Errorf("block at offset %d: %w", start, err)
		}
		blocks = append(blocks, v)
	}
	return blocks, nil
}

// DequantizeBlocks reconstructs and concatenates the blocks produced by
// QuantizeBlocks.
func DequantizeBlocks(blocks []Vector) []float32 {
	n := 0
	for _, b := range blocks {
		n += b.Len()
	}
	out := make([]float32, n)
	off := 0
	for _, b := range blocks {
		BaseDequantizeInt8(b.Data, out[off:off+b.Len()], b.Min, b.Scale)
		off += b.Len()
	}
	return out
}
