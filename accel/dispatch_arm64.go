//go:build arm64

package accel

import "golang.org/x/sys/cpu"

func init() {
	if NoSimdEnv() {
		setScalarMode()
		return
	}

	detectCPUFeatures()
}

func detectCPUFeatures() {
	// ASIMD is architecturally required on arm64, but some emulators and
	// sandboxes report nothing at all.
	if !cpu.ARM64.HasASIMD {
		setScalarMode()
		return
	}
	currentLevel = DispatchNEON
	currentWidth = 16
	currentName = "neon"
}
