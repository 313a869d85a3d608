package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestStdDev(t *testing.T) {
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-9)
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{2, 2, 2, 2}))
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 5.0, PercentChange(1.05, 1.0), 1e-9)
	assert.InDelta(t, -50.0, PercentChange(1.0, 2.0), 1e-9)
	assert.Equal(t, 0.0, PercentChange(1.0, 0), "zero base stays defined")
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, -2.68, Round2(-2.676))
	assert.Equal(t, 1.2346, Round4(1.23456))
	assert.Equal(t, 1.0, Round4(0.99999))
}
