package runner

import (
	"fmt"

	"github.com/mengjing120/kernelgen/device"
	"github.com/mengjing120/kernelgen/types"
)

// LocalMem describes work-group scratch memory for a kernel. The declared
// size is a multiple of the work-group size: a LocalMem with Mult 2
// resolved for "double" at work-group size 128 yields a 2048 byte
// allocation. Resolutions are memoized per (element type, work-group size)
// pair for the lifetime of the descriptor.
type LocalMem struct {
	// Mult is the author-chosen multiplicity of the work-group size.
	Mult int

	dev   device.Device
	cache map[localMemKey]device.Scratch
}

type localMemKey struct {
	ctype string
	wg    int
}

// NewLocalMem creates a scratch memory descriptor. It fails fast on
// devices without scratch support.
func NewLocalMem(dev device.Device, mult int) (*LocalMem, error) {
	if !dev.HasScratch() {
		return nil, device.ErrUnsupported("local scratch memory", dev.Mode())
	}
	if mult <= 0 {
		return nil, fmt.Errorf("local memory multiplicity must be positive, got %d", mult)
	}
	return &LocalMem{
		Mult:  mult,
		dev:   dev,
		cache: make(map[localMemKey]device.Scratch),
	}, nil
}

// Get resolves the scratch allocation for an element type and work-group
// size. Repeated calls with the same pair return the same allocation; no
// aliasing guarantee is made across distinct pairs or descriptors.
func (l *LocalMem) Get(ctype string, workGroupSize int) (device.Scratch, error) {
	if workGroupSize <= 0 {
		return nil, fmt.Errorf("work group size must be positive, got %d", workGroupSize)
	}
	key := localMemKey{ctype: ctype, wg: workGroupSize}
	if s, ok := l.cache[key]; ok {
		return s, nil
	}
	elemSize, err := types.SizeOf(ctype)
	if err != nil {
		return nil, fmt.Errorf("local memory: %w", err)
	}
	s, err := l.dev.AllocScratch(elemSize * int64(l.Mult) * int64(workGroupSize))
	if err != nil {
		return nil, err
	}
	l.cache[key] = s
	return s, nil
}
