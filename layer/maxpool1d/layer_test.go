package maxpool1d

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestForward(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{
		1, -1,
		3, -2,
		2, -3,
		0, -4,
		5, -5,
	})
	y := MustNew(3).Lay(nil).Forward(x)
	assert.Equal(t, []float64{3, 3, 3, 5, 5}, mat.Col(nil, 0, y))
	assert.Equal(t, []float64{-1, -1, -2, -3, -4}, mat.Col(nil, 1, y))

	same := MustNew(1).Lay(nil).Forward(x)
	assert.True(t, mat.Equal(x, same))
}

func TestNew(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}
