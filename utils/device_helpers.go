package utils

import (
	"fmt"

	"github.com/mengjing120/kernelgen/device"
)

// CreateTestDevice creates a Device for testing, preferring parallel OCCA
// modes and falling back to the Trace device so tests run on machines
// without an OCCA installation.
func CreateTestDevice() device.Device {
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	for _, props := range backends {
		dev, err := device.NewOCCA(device.OCCAConfig{Props: props})
		if err == nil {
			fmt.Printf("Created %s device\n", dev.Mode())
			return dev
		}
	}

	return device.NewTrace(device.TraceConfig{})
}
