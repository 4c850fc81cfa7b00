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

package main

import "math"

// sliceLen converts a C element count to a Go slice length. It fails when the
// count, or the byte size of that many elements of elemSize bytes, does not
// fit in an int.
func sliceLen(n uint64, elemSize uintptr) (int, bool) {
	if elemSize == 0 || n > uint64(math.MaxInt/elemSize) {
		return 0, false
	}
	return int(n), true
}
