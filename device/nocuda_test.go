//go:build !cuda

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectWithoutCUDA(t *testing.T) {
	_, err := Select(0)
	assert.ErrorIs(t, err, ErrNoCUDA)
}
