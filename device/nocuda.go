//go:build !cuda

package device

import "fmt"

func probeCUDA(gpu int) (Device, error) {
	return Device{}, fmt.Errorf("%w: gpu %d requested, built without the cuda tag", ErrNoCUDA, gpu)
}
