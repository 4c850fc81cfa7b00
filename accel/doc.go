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

// Package accel provides the portable lane-vector operations and CPU dispatch
// information that the bridge kernels are written against.
//
// Kernels are expressed as a vector loop over [Vec] values followed by a scalar
// tail, the same shape regardless of target. The vector width is chosen once at
// startup from the detected CPU features.
//
// # Dispatch
//
// The dispatch level is detected from golang.org/x/sys/cpu at init time:
//
//   - amd64: AVX-512 (64 bytes), AVX2 (32 bytes), SSE2 baseline (16 bytes)
//   - arm64: NEON (16 bytes)
//   - other: scalar (16 bytes)
//
// Setting BRIDGE_NO_SIMD to any value other than "" or "0" forces scalar mode.
//
// # Operations
//
// All operations work on any [Lanes] type unless they need floating point
// semantics, in which case they are constrained to [Floats]:
//
//	v := accel.Load(src)
//	v = accel.MulAdd(v, accel.Set[float32](2), accel.Set[float32](1))
//	accel.Store(v, dst)
package accel
