//go:build !amd64 && !arm64

package accel

func init() {
	// Other architectures run the scalar fallback.
	setScalarMode()
}
