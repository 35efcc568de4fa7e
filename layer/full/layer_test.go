package full

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestForward(t *testing.T) {
	f := MustNew(2, 3, false).LayFull(nil)
	copy(f.Weight, []float64{1, 0, 0, 1, 1, -1})
	copy(f.Bias, []float64{0, 1, 0})

	y := f.Forward(mat.NewDense(2, 2, []float64{1, 2, 3, 5}))
	assert.Equal(t, []float64{1, 3, -1}, y.RawRowView(0))
	assert.Equal(t, []float64{3, 6, -2}, y.RawRowView(1))

	f.ReLU = true
	y = f.Forward(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Equal(t, []float64{1, 3, 0}, y.RawRowView(0))
}

func TestNew(t *testing.T) {
	_, err := New(0, 3, false)
	assert.Error(t, err)

	f := MustNew(4, 2, true).LayFull(rand.New(rand.NewSource(1)))
	require.Len(t, f.Params(), 2)
	for _, v := range f.Weight {
		assert.LessOrEqual(t, v, 0.5)
		assert.GreaterOrEqual(t, v, -0.5)
	}
}
