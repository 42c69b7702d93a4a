package generator

import (
	"bytes"
	"log"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDifficulty(t *testing.T) {
	assert.InDelta(t, 0, NewDifficulty(10, 0, 0).DI, 1e-9)
	assert.InDelta(t, 40.95695, NewDifficulty(10, 1, 1).DI, 1e-4)

	easy := NewDifficulty(10, 0.1, 1)
	denser := NewDifficulty(10, 0.3, 1)
	longer := NewDifficulty(10, 0.1, 3)
	assert.Less(t, easy.DI, denser.DI)
	assert.Less(t, easy.DI, longer.DI)
}

func TestConstraints_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Constraints)
		ok     bool
	}{
		{"defaults", func(*Constraints) {}, true},
		{"size too small", func(c *Constraints) { c.Size = 1 }, false},
		{"size too large", func(c *Constraints) { c.Size = 51 }, false},
		{"DI reversed", func(c *Constraints) { c.MinDI, c.MaxDI = 50, 10 }, false},
		{"density above one", func(c *Constraints) { c.MaxDensity = 1.5 }, false},
		{"negative length", func(c *Constraints) { c.MinLength = -1 }, false},
		{"fixed point", func(c *Constraints) { c.MinDensity, c.MaxDensity = 0.2, 0.2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConstraints()
			tt.modify(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConstraints)
			}
		})
	}
}

func TestCalibrate_StaysInBounds(t *testing.T) {
	c := Constraints{
		Size:       8,
		MinDI:      5,
		MaxDI:      60,
		MinDensity: 0.05,
		MaxDensity: 0.4,
		MinLength:  0.5,
		MaxLength:  3,
	}

	for seed := uint64(0); seed < 20; seed++ {
		d, err := Calibrate(c, rand.New(rand.NewPCG(seed, 0)), Options{})
		require.NoError(t, err)

		assert.Equal(t, 8, d.Size)
		assert.GreaterOrEqual(t, d.Density, c.MinDensity)
		assert.LessOrEqual(t, d.Density, c.MaxDensity)
		assert.GreaterOrEqual(t, d.Length, c.MinLength)
		assert.LessOrEqual(t, d.Length, c.MaxLength)
		assert.GreaterOrEqual(t, d.Target, c.MinDI)
		assert.LessOrEqual(t, d.Target, c.MaxDI)
		assert.LessOrEqual(t, d.Iterations, MaxIterations)
		assert.InDelta(t, NewDifficulty(d.Size, d.Density, d.Length).DI, d.DI, 1e-9)
	}
}

func TestCalibrate_StartsInTheMiddle(t *testing.T) {
	c := DefaultConstraints()
	c.MinDensity, c.MaxDensity = 0.2, 0.2
	c.MinLength, c.MaxLength = 1, 1

	d, err := Calibrate(c, rand.New(rand.NewPCG(1, 2)), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.2, d.Density, "a fixed range never moves")
	assert.Equal(t, 1.0, d.Length)
}

func TestCalibrate_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	c := DefaultConstraints()
	c.MinDI, c.MaxDI = 90, 100

	d, err := Calibrate(c, rand.New(rand.NewPCG(4, 4)), Options{Debug: true, Logger: log.New(&buf, "", 0)})
	require.NoError(t, err)
	require.Positive(t, d.Iterations)
	assert.Equal(t, d.Iterations, strings.Count(buf.String(), "Iteration:"))
}

func TestCalibrate_InvalidConstraints(t *testing.T) {
	_, err := Calibrate(Constraints{Size: 0}, rand.New(rand.NewPCG(1, 1)), Options{})
	assert.ErrorIs(t, err, ErrInvalidConstraints)
}
