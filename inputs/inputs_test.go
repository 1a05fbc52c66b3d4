package inputs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRamp(t *testing.T) {
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, Ramp(5))
	assert.Empty(t, Ramp(0))
	assert.Equal(t, int64(130816), Sum(Ramp(512)))
}

func TestSeededDeterministic(t *testing.T) {
	a := Seeded([]byte("seed"), 64, 1000)
	b := Seeded([]byte("seed"), 64, 1000)
	assert.Equal(t, a, b)

	prefix := Seeded([]byte("seed"), 16, 1000)
	assert.Equal(t, a[:16], prefix)

	other := Seeded([]byte("other"), 64, 1000)
	assert.NotEqual(t, a, other)
}

func TestSeededBound(t *testing.T) {
	for _, x := range Seeded([]byte{1, 2, 3}, 4096, 7) {
		require.GreaterOrEqual(t, x, int64(0))
		require.Less(t, x, int64(7))
	}
	assert.Panics(t, func() {
		Seeded(nil, 1, 0)
	})
}

func TestParse(t *testing.T) {
	buf, err := Parse([]string{"1", "-2", "30"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -2, 30}, buf)

	_, err = Parse([]string{"1", "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse element 1")
}

func TestSum(t *testing.T) {
	assert.Equal(t, int64(36), Sum([]int64{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, int64(0), Sum(nil))
}
