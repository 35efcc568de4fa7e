//go:build cuda

package device

import (
	"fmt"

	"gorgonia.org/cu"
)

func probeCUDA(gpu int) (Device, error) {
	n, err := cu.NumDevices()
	if err != nil {
		return Device{}, fmt.Errorf("%w: %v", ErrNoCUDA, err)
	}
	if gpu >= n {
		return Device{}, fmt.Errorf("%w: gpu %d of %d devices", ErrNoCUDA, gpu, n)
	}
	d := cu.Device(gpu)
	name, err := d.Name()
	if err != nil {
		return Device{}, err
	}
	mem, err := d.TotalMem()
	if err != nil {
		return Device{}, err
	}
	major, _ := d.Attribute(cu.ComputeCapabilityMajor)
	minor, _ := d.Attribute(cu.ComputeCapabilityMinor)
	return Device{
		GPU:    gpu,
		Name:   fmt.Sprintf("%s, compute %d.%d", name, major, minor),
		Memory: uint64(mem),
	}, nil
}
