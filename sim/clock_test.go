package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_StartsAtZero(t *testing.T) {
	assert.Equal(t, 0.0, NewClock().Now())
}

func TestClock_AdvanceAccumulates(t *testing.T) {
	c := NewClock()
	require.NoError(t, c.Advance(1.5))
	require.NoError(t, c.Advance(0))
	require.NoError(t, c.Advance(2.5))
	assert.Equal(t, 4.0, c.Now())
}

func TestClock_NegativeAdvance_ReturnsErrInvalidAdvance(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
	}{
		{"negative", -0.001},
		{"nan", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClock()
			require.NoError(t, c.Advance(10))

			err := c.Advance(tt.delta)

			assert.True(t, errors.Is(err, ErrInvalidAdvance), "got %v", err)
			assert.Equal(t, 10.0, c.Now(), "clock must not move on a rejected advance")
		})
	}
}

func TestClock_AdvanceTo_LandsExactly(t *testing.T) {
	// GIVEN a clock at 0.1
	c := NewClock()
	require.NoError(t, c.AdvanceTo(0.1))

	// WHEN moved to 0.3
	require.NoError(t, c.AdvanceTo(0.3))

	// THEN it reads exactly 0.3 (no 0.1 + 0.2 rounding)
	assert.Equal(t, 0.3, c.Now())

	// AND moving backwards fails
	assert.ErrorIs(t, c.AdvanceTo(0.2), ErrInvalidAdvance)
}

func TestClock_Reset(t *testing.T) {
	c := NewClock()
	require.NoError(t, c.Advance(100))
	c.Reset()
	assert.Equal(t, 0.0, c.Now())
}
