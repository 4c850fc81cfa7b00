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

package accel

import (
	"fmt"
	"os"
)

// DispatchLevel identifies the instruction set the lane width was chosen for.
type DispatchLevel int

const (
	DispatchScalar DispatchLevel = iota
	DispatchSSE2
	DispatchAVX2
	DispatchAVX512
	DispatchNEON
)

func (l DispatchLevel) String() string {
	switch l {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return fmt.Sprintf("DispatchLevel(%d)", int(l))
	}
}

// NoSimdEnvVar is the environment variable that forces scalar mode.
const NoSimdEnvVar = "BRIDGE_NO_SIMD"

var (
	currentLevel DispatchLevel
	currentWidth int
	currentName  string
)

// CurrentLevel returns the dispatch level selected at startup.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the vector width in bytes.
func CurrentWidth() int {
	return currentWidth
}

// CurrentName returns a short name for the selected target, e.g. "avx2".
func CurrentName() string {
	return currentName
}

// NoSimdEnv reports whether SIMD has been disabled through BRIDGE_NO_SIMD.
func NoSimdEnv() bool {
	v := os.Getenv(NoSimdEnvVar)
	return v != "" && v != "0"
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16 // keep 16-byte vectors in scalar mode so lane counts stay stable
	currentName = "scalar"
}
