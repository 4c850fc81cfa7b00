package accel

import (
	"math"
	"unsafe"
)

// This file provides the pure Go lane operations. Every kernel in the bridge is
// written against these, so the vector loop and the scalar tail stay
// identical in shape on every target.

// Floats is the set of floating point lane types.
type Floats interface {
	~float32 | ~float64
}

// Integers is the set of integer lane types.
type Integers interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Lanes is the set of all lane types.
type Lanes interface {
	Floats | Integers
}

// Vec is a vector of MaxLanes[T]() lanes. A Vec loaded from a short slice
// holds fewer lanes.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of lanes held by v.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// MaxLanes returns the number of T lanes that fit in the current vector width.
func MaxLanes[T Lanes]() int {
	var zero T
	return currentWidth / int(unsafe.Sizeof(zero))
}

// NumLanes is an alias for MaxLanes, kept for symmetry with Vec.NumLanes.
func NumLanes[T Lanes]() int {
	return MaxLanes[T]()
}

// Load creates a vector by loading data from a slice.
func Load[T Lanes](src []T) Vec[T] {
	n := min(MaxLanes[T](), len(src))
	data := make([]T, n)
	copy(data, src[:n])
	return Vec[T]{data: data}
}

// Store writes a vector's data to a slice.
func Store[T Lanes](v Vec[T], dst []T) {
	n := min(len(v.data), len(dst))
	copy(dst[:n], v.data[:n])
}

// Set creates a vector with all lanes set to the same value.
func Set[T Lanes](value T) Vec[T] {
	data := make([]T, MaxLanes[T]())
	for i := range data {
		data[i] = value
	}
	return Vec[T]{data: data}
}

// Zero creates a vector with all lanes set to zero.
func Zero[T Lanes]() Vec[T] {
	return Vec[T]{data: make([]T, MaxLanes[T]())}
}

func binary[T Lanes](a, b Vec[T], op func(x, y T) T) Vec[T] {
	n := min(len(a.data), len(b.data))
	result := make([]T, n)
	for i := range n {
		result[i] = op(a.data[i], b.data[i])
	}
	return Vec[T]{data: result}
}

// Add performs element-wise addition.
func Add[T Lanes](a, b Vec[T]) Vec[T] {
	return binary(a, b, func(x, y T) T { return x + y })
}

// Sub performs element-wise subtraction.
func Sub[T Lanes](a, b Vec[T]) Vec[T] {
	return binary(a, b, func(x, y T) T { return x - y })
}

// Mul performs element-wise multiplication.
func Mul[T Lanes](a, b Vec[T]) Vec[T] {
	return binary(a, b, func(x, y T) T { return x * y })
}

// Div performs element-wise division.
func Div[T Floats](a, b Vec[T]) Vec[T] {
	return binary(a, b, func(x, y T) T { return x / y })
}

// Min returns element-wise minimum.
func Min[T Lanes](a, b Vec[T]) Vec[T] {
	return binary(a, b, func(x, y T) T { return min(x, y) })
}

// Max returns element-wise maximum.
func Max[T Lanes](a, b Vec[T]) Vec[T] {
	return binary(a, b, func(x, y T) T { return max(x, y) })
}

// MulAdd computes a*b + c per lane.
func MulAdd[T Floats](a, b, c Vec[T]) Vec[T] {
	n := min(len(a.data), len(b.data), len(c.data))
	result := make([]T, n)
	for i := range n {
		result[i] = a.data[i]*b.data[i] + c.data[i]
	}
	return Vec[T]{data: result}
}

// Round rounds each lane to the nearest integer, halves away from zero.
func Round[T Floats](v Vec[T]) Vec[T] {
	result := make([]T, len(v.data))
	for i, x := range v.data {
		result[i] = T(math.Round(float64(x)))
	}
	return Vec[T]{data: result}
}

// Clamp limits each lane to [lo, hi].
func Clamp[T Lanes](v, lo, hi Vec[T]) Vec[T] {
	return Min(Max(v, lo), hi)
}

// ReduceMin returns the smallest lane. It panics on an empty vector.
func ReduceMin[T Lanes](v Vec[T]) T {
	m := v.data[0]
	for _, x := range v.data[1:] {
		m = min(m, x)
	}
	return m
}

// ReduceMax returns the largest lane. It panics on an empty vector.
func ReduceMax[T Lanes](v Vec[T]) T {
	m := v.data[0]
	for _, x := range v.data[1:] {
		m = max(m, x)
	}
	return m
}
