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

// Package cpuinfo reports the CPU features relevant to the bridge kernels as
// detected by golang.org/x/sys/cpu.
package cpuinfo

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/studyboard/bridge/accel"
)

// Feature is a single CPU capability flag.
type Feature struct {
	Name    string
	Present bool
	Note    string
}

// Report is a snapshot of the host and the selected dispatch target.
type Report struct {
	GOOS     string
	GOARCH   string
	NumCPU   int
	Level    accel.DispatchLevel
	Width    int
	Features []Feature
}

// Collect gathers the report for the running process.
func Collect() Report {
	r := Report{
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
		NumCPU: runtime.NumCPU(),
		Level:  accel.CurrentLevel(),
		Width:  accel.CurrentWidth(),
	}
	switch runtime.GOARCH {
	case "arm64":
		r.Features = arm64Features()
	case "amd64":
		r.Features = amd64Features()
	}
	return r
}

// Enabled returns the names of the features that are present.
func (r Report) Enabled() []string {
	var names []string
	for _, f := range r.Features {
		if f.Present {
			names = append(names, f.Name)
		}
	}
	return names
}

// WriteTo prints the report in a human readable form.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	fmt.Fprintf(cw, "GOOS: %s\n", r.GOOS)
	fmt.Fprintf(cw, "GOARCH: %s\n", r.GOARCH)
	fmt.Fprintf(cw, "NumCPU: %d\n", r.NumCPU)
	fmt.Fprintln(cw)

	fmt.Fprintf(cw, "Dispatch level: %s\n", strings.ToUpper(r.Level.String()))
	fmt.Fprintf(cw, "Dispatch width: %d bytes\n", r.Width)

	if len(r.Features) > 0 {
		fmt.Fprintln(cw)
		fmt.Fprintf(cw, "=== golang.org/x/sys/cpu.%s ===\n", cpuVar(r.GOARCH))
		// NoLower keeps acronyms such as ARMv8.2-A intact.
		title := cases.Title(language.English, cases.NoLower)
		for _, f := range r.Features {
			if f.Note != "" {
				fmt.Fprintf(cw, "  %-12s %v (%s)\n", f.Name+":", f.Present, title.String(f.Note))
			} else {
				fmt.Fprintf(cw, "  %-12s %v\n", f.Name+":", f.Present)
			}
		}
	}
	return cw.n, cw.err
}

func cpuVar(goarch string) string {
	switch goarch {
	case "arm64":
		return "ARM64"
	case "amd64":
		return "X86"
	}
	return goarch
}

func arm64Features() []Feature {
	return []Feature{
		{"HasASIMD", cpu.ARM64.HasASIMD, "NEON baseline"},
		{"HasFP", cpu.ARM64.HasFP, "Floating point"},
		{"HasFPHP", cpu.ARM64.HasFPHP, "FP16 scalar, ARMv8.2-A"},
		{"HasASIMDHP", cpu.ARM64.HasASIMDHP, "FP16 NEON, ARMv8.2-A"},
		{"HasASIMDDP", cpu.ARM64.HasASIMDDP, "int8 dot product"},
		{"HasSVE", cpu.ARM64.HasSVE, "Scalable Vector Extension"},
		{"HasSVE2", cpu.ARM64.HasSVE2, ""},
	}
}

func amd64Features() []Feature {
	return []Feature{
		{"HasSSE2", cpu.X86.HasSSE2, ""},
		{"HasSSE41", cpu.X86.HasSSE41, ""},
		{"HasAVX", cpu.X86.HasAVX, ""},
		{"HasAVX2", cpu.X86.HasAVX2, ""},
		{"HasFMA", cpu.X86.HasFMA, ""},
		{"HasAVX512F", cpu.X86.HasAVX512F, ""},
		{"HasAVX512BW", cpu.X86.HasAVX512BW, ""},
		{"HasAVX512VL", cpu.X86.HasAVX512VL, ""},
		{"HasAVX512VNNI", cpu.X86.HasAVX512VNNI, "int8 dot product"},
	}
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
