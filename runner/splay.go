// Package runner dispatches compiled kernels: it computes launch geometry
// from the logical problem size and device limits, marshals call-site
// arguments into the compiled calling convention, and issues blocking
// launches.
package runner

import "github.com/mengjing120/kernelgen/device"

// Splay computes a one-dimensional launch geometry for n work items on a
// device. kernelMaxWG further caps the work-group size for the specific
// compiled kernel; zero means no kernel-specific cap.
//
// The heuristic favors full hardware occupancy over minimizing padding:
// the returned global size may exceed n, and kernels must treat indices
// >= n as no-ops. The regime boundaries and constants are empirical tuning
// values; downstream kernels depend on the resulting launch shape, so keep
// them exactly as they are.
func Splay(lim device.Limits, n int, kernelMaxWG int) (globalSize, localSize int) {
	maxWorkItems := min(128, lim.MaxWorkGroupSize)
	if kernelMaxWG > 0 {
		maxWorkItems = min(maxWorkItems, kernelMaxWG)
	}
	minWorkItems := min(64, maxWorkItems)

	// 4x to overfill the device, 8 groups per compute unit: an NVIDIA rule
	// of thumb, not queried from the hardware.
	fullGroups := lim.ComputeUnits * 4 * 8

	var groupCount, itemsPerGroup int
	switch {
	case n < minWorkItems:
		groupCount = 1
		itemsPerGroup = minWorkItems
	case n < fullGroups*minWorkItems:
		groupCount = (n + minWorkItems - 1) / minWorkItems
		itemsPerGroup = minWorkItems
	case n < fullGroups*maxWorkItems:
		groupCount = fullGroups
		grp := (n + minWorkItems - 1) / minWorkItems
		itemsPerGroup = ((grp + fullGroups - 1) / fullGroups) * minWorkItems
	default:
		groupCount = (n + maxWorkItems - 1) / maxWorkItems
		itemsPerGroup = maxWorkItems
	}

	return groupCount * itemsPerGroup, itemsPerGroup
}
