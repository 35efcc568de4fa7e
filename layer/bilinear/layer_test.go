package bilinear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// join applies the form to row n of l and row n of r for every n.
func join(b *Bilinear, l, r *mat.Dense) *mat.Dense {
	n, _ := l.Dims()
	y := mat.NewDense(n, b.Out, nil)
	for c, t := range b.Project(l) {
		for i := 0; i < n; i++ {
			y.Set(i, c, mat.Dot(t.RowView(i), r.RowView(i))+b.Bias[c])
		}
	}
	return y
}

func TestProject(t *testing.T) {
	b, err := New(2, 2, 2, nil)
	require.NoError(t, err)
	// channel 0 is the dot product, channel 1 multiplies l0 by r1
	copy(b.Weight, []float64{1, 0, 0, 1, 0, 1, 0, 0})
	copy(b.Bias, []float64{0, 1})

	l := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	r := mat.NewDense(2, 2, []float64{5, 6, 7, 8})
	y := join(b, l, r)
	assert.Equal(t, []float64{17, 7}, y.RawRowView(0))
	assert.Equal(t, []float64{53, 25}, y.RawRowView(1))

	assert.Panics(t, func() { b.Project(mat.NewDense(1, 3, nil)) })

	_, err = New(0, 1, 1, nil)
	assert.Error(t, err)
}
