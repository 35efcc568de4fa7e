package embed

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneHot(t *testing.T) {
	e, err := New(0, nil)
	require.NoError(t, err)
	assert.Nil(t, e.Params())

	y := e.Encode("ACgTN")
	assert.Equal(t, []float64{1, 0, 0, 0}, y.RawRowView(0))
	assert.Equal(t, []float64{0, 1, 0, 0}, y.RawRowView(1))
	assert.Equal(t, []float64{0, 0, 1, 0}, y.RawRowView(2))
	assert.Equal(t, []float64{0, 0, 0, 1}, y.RawRowView(3))
	assert.Equal(t, []float64{0, 0, 0, 0}, y.RawRowView(4))
}

func TestLearned(t *testing.T) {
	e, err := New(3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, e.Params(), 1)
	assert.Equal(t, []int{5, 3}, e.Params()[0].Shape)

	y := e.Encode("UA")
	assert.Equal(t, e.Weight[12:15], y.RawRowView(0))
	assert.Equal(t, e.Weight[3:6], y.RawRowView(1))

	_, err = New(-1, nil)
	assert.Error(t, err)
}
