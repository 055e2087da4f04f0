package util

import (
	"runtime"
	"strconv"

	"golang.org/x/sys/cpu"

	"lanec/src/ir/vir"
)

// Lanes of 32-bit elements per SIMD register.
const (
	lanesAVX512 = 16
	lanesAVX    = 8
	lanesSSE    = 4
)

// HostTarget returns the target of the machine lanec runs on. The vector width is the number of 32-bit lanes of the
// widest SIMD register the CPU supports: 16 for AVX-512, 8 for AVX and AVX2, 4 for SSE and NEON. Masks are 32 bits
// wide, except for AVX-512 which has dedicated one bit mask registers.
func HostTarget() vir.Target {
	t := vir.Target{
		VectorWidth:  lanesSSE,
		MaskBitCount: 32,
		Is32Bit:      strconv.IntSize == 32,
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasAVX512F {
			t.VectorWidth = lanesAVX512
			t.MaskBitCount = 1
		} else if cpu.X86.HasAVX2 || cpu.X86.HasAVX {
			t.VectorWidth = lanesAVX
		}
	}
	return t
}
