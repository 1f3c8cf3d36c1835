package scan

import (
	"runtime"
	"sync"

	"golang.org/x/sys/cpu"
)

// Features describes the vector capabilities of the running CPU. The SWAR
// matcher does not need any of them; they are reported for diagnostics.
type Features struct {
	Arch    string
	SSE42   bool
	AVX2    bool
	NEON    bool
	UseSWAR bool
}

var (
	cpuFeatures     Features
	cpuFeaturesOnce sync.Once
)

// DetectFeatures returns the CPU features, detected once per process.
func DetectFeatures() Features {
	cpuFeaturesOnce.Do(func() {
		cpuFeatures = Features{
			Arch:    runtime.GOARCH,
			SSE42:   cpu.X86.HasSSE42,
			AVX2:    cpu.X86.HasAVX2,
			NEON:    cpu.ARM64.HasASIMD,
			UseSWAR: Wide(),
		}
	})
	return cpuFeatures
}
