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

// Command libbridge builds the bridge as a C shared library:
//
//	go build -buildmode=c-shared -o studyboard_bridge.so ./cmd/libbridge
//
// The factory functions return an opaque handle. Quantized vectors cross the
// boundary as a single bridge_quantized struct so that the data, min and scale
// always travel together. Buffers returned in a bridge_quantized are allocated
// with malloc and must be released with bridgeFreeQuantized.
package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	int8_t* data;
	size_t  len;
	float   min_val;
	float   scale;
	int     status;
} bridge_quantized;

enum {
	BRIDGE_OK = 0,
	BRIDGE_ERR_INVALID_HANDLE = 1,
	BRIDGE_ERR_INVALID_INPUT = 2,
	BRIDGE_ERR_INTERNAL = 3,
};
*/
import "C"

import (
	"errors"
	"runtime/cgo"
	"unsafe"

	"github.com/studyboard/bridge/bridge"
	"github.com/studyboard/bridge/quantize"
)

func main() {}

func lookup(h C.uintptr_t) (*bridge.Bridge, bool) {
	if h == 0 {
		return nil, false
	}
	b, ok := cgo.Handle(h).Value().(*bridge.Bridge)
	return b, ok
}

func status(err error) C.int {
	switch {
	case err == nil:
		return C.BRIDGE_OK
	case errors.Is(err, quantize.ErrInvalidInput):
		return C.BRIDGE_ERR_INVALID_INPUT
	default:
		return C.BRIDGE_ERR_INTERNAL
	}
}

//export createBridge
func createBridge() C.uintptr_t {
	cfg, err := bridge.LoadConfig("")
	if err != nil {
		cfg = bridge.DefaultConfig()
	}
	b, err := bridge.New(cfg)
	if err != nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(b))
}

//export destroyBridge
func destroyBridge(h C.uintptr_t) {
	b, ok := lookup(h)
	if !ok {
		return
	}
	_ = b.Close()
	cgo.Handle(h).Delete()
}

//export bridgeInitialize
func bridgeInitialize(h C.uintptr_t) C.int {
	b, ok := lookup(h)
	if !ok {
		return C.BRIDGE_ERR_INVALID_HANDLE
	}
	return status(b.Initialize())
}

//export bridgeQuantize
func bridgeQuantize(h C.uintptr_t, weights *C.float, n C.size_t) C.bridge_quantized {
	var out C.bridge_quantized
	b, ok := lookup(h)
	if !ok {
		out.status = C.BRIDGE_ERR_INVALID_HANDLE
		return out
	}
	count, ok := sliceLen(uint64(n), unsafe.Sizeof(float32(0)))
	if !ok {
		out.status = C.BRIDGE_ERR_INVALID_INPUT
		return out
	}
	var in []float32
	if weights != nil && count > 0 {
		in = unsafe.Slice((*float32)(unsafe.Pointer(weights)), count)
	}

	v, err := b.QuantizeWeights(in)
	if err != nil {
		out.status = status(err)
		return out
	}

	data := (*C.int8_t)(C.malloc(C.size_t(v.Len())))
	if data == nil {
		out.status = C.BRIDGE_ERR_INTERNAL
		return out
	}
	copy(unsafe.Slice((*int8)(unsafe.Pointer(data)), v.Len()), v.Data)

	out.data = data
	out.len = C.size_t(v.Len())
	out.min_val = C.float(v.Min)
	out.scale = C.float(v.Scale)
	out.status = C.BRIDGE_OK
	return out
}

// bridgeDequantize writes q.len floats to out, which must have room for them.
//
//export bridgeDequantize
func bridgeDequantize(h C.uintptr_t, q C.bridge_quantized, out *C.float) C.int {
	b, ok := lookup(h)
	if !ok {
		return C.BRIDGE_ERR_INVALID_HANDLE
	}
	if q.len > 0 && (q.data == nil || out == nil) {
		return C.BRIDGE_ERR_INVALID_INPUT
	}
	// out receives n float32 values, the larger of the two buffers.
	n, ok := sliceLen(uint64(q.len), unsafe.Sizeof(float32(0)))
	if !ok {
		return C.BRIDGE_ERR_INVALID_INPUT
	}
	if n == 0 {
		return C.BRIDGE_OK
	}

	v := quantize.Vector{
		Data:  unsafe.Slice((*int8)(unsafe.Pointer(q.data)), n),
		Min:   float32(q.min_val),
		Scale: float32(q.scale),
	}
	copy(unsafe.Slice((*float32)(unsafe.Pointer(out)), n), b.DequantizeWeights(v))
	return C.BRIDGE_OK
}

//export bridgeFreeQuantized
func bridgeFreeQuantized(q C.bridge_quantized) {
	if q.data != nil {
		C.free(unsafe.Pointer(q.data))
	}
}

//export bridgeMemoryUsage
func bridgeMemoryUsage(h C.uintptr_t) C.int64_t {
	b, ok := lookup(h)
	if !ok {
		return -1
	}
	return C.int64_t(b.MemoryUsage())
}

//export bridgeClearCache
func bridgeClearCache(h C.uintptr_t) {
	if b, ok := lookup(h); ok {
		b.ClearCache()
	}
}
