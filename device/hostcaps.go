package device

import "golang.org/x/sys/cpu"

// HostSIMDWidth reports the widest float32 SIMD lane count the host CPU
// supports. Host-mode devices use it to size their default work-group
// limit so generated loops vectorize cleanly.
func HostSIMDWidth() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 16
	case cpu.X86.HasAVX2, cpu.X86.HasAVX:
		return 8
	case cpu.X86.HasSSE2:
		return 4
	case cpu.ARM64.HasASIMD:
		return 4
	default:
		return 1
	}
}
