// Package device reports the hardware a run uses.
package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// ErrNoCUDA is returned when a GPU is requested from a build without CUDA
// support or with no such device.
var ErrNoCUDA = errors.New("CUDA device not available")

// Device is the processor predictions run on.
type Device struct {
	GPU    int // -1 for the CPU
	Name   string
	Memory uint64 // bytes, GPU only
}

func (d Device) String() string {
	if d.GPU < 0 {
		return "cpu: " + d.Name
	}
	return fmt.Sprintf("cuda:%d: %s (%d MiB)", d.GPU, d.Name, d.Memory>>20)
}

// Describe summarises the CPU.
func Describe() string {
	c := cpuid.CPU
	var feats []string
	for _, f := range []struct {
		name string
		id   cpuid.FeatureID
	}{
		{"avx2", cpuid.AVX2},
		{"fma3", cpuid.FMA3},
		{"avx512", cpuid.AVX512F},
		{"asimd", cpuid.ASIMD},
	} {
		if c.Supports(f.id) {
			feats = append(feats, f.name)
		}
	}
	name := c.BrandName
	if name == "" {
		name = c.VendorString
	}
	return fmt.Sprintf("%s, %d cores, %d threads [%s]", name, c.PhysicalCores, c.LogicalCores, strings.Join(feats, " "))
}

// Select returns the device for gpu. A negative id selects the CPU.
func Select(gpu int) (Device, error) {
	if gpu < 0 {
		return Device{GPU: -1, Name: Describe()}, nil
	}
	return probeCUDA(gpu)
}
