package embed

import (
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
)

// Footprint is what a training run is about to allocate
type Footprint struct {
	VocabSizes []int
	Dim        int
	Sememes    int
	Entries    int
	TableSize  int
}

// Bytes estimates the allocation: four matrices per language, the sampling
// tables, and the sememe store
func (f Footprint) Bytes() uint64 {
	var n uint64
	for _, v := range f.VocabSizes {
		n += 4 * 8 * uint64(v) * uint64(f.Dim)
		n += 4 * uint64(f.TableSize)
	}
	n += 4 * 8 * uint64(f.Sememes) * uint64(f.Dim)
	n += 2 * 8 * uint64(f.Sememes+f.Entries)
	return n
}

// CheckMemory fails when the footprint exceeds the memory the OS reports as
// available. It returns the available byte count.
func CheckMemory(f Footprint) (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, errors.Wrap(err, "cannot read memory statistics")
	}
	if need := f.Bytes(); need > vm.Available {
		return vm.Available, errors.Errorf("memory allocation failed: need %d bytes, %d available", need, vm.Available)
	}
	return vm.Available, nil
}
