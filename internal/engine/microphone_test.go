package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeak(t *testing.T) {
	tests := []struct {
		name    string
		samples [][2]float64
		want    int
	}{
		{"empty", nil, 0},
		{"silence", [][2]float64{{0, 0}, {0, 0}}, 0},
		{"left channel", [][2]float64{{0.25, 0}, {0.1, 0}}, 25},
		{"negative right channel", [][2]float64{{0.1, -0.8}}, 80},
		{"clipped", [][2]float64{{1.7, 0}}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, peak(tt.samples))
		})
	}
}

func TestSyntheticMicrophone_VaryingLoudness(t *testing.T) {
	mic, err := SyntheticMicrophone()
	require.NoError(t, err)

	buf := make([][2]float64, SampleRate.N(50*time.Millisecond))
	seen := map[int]bool{}
	for range 20 {
		n, ok := mic.Stream(buf)
		require.True(t, ok)
		require.Equal(t, len(buf), n)
		p := peak(buf[:n])
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
		seen[p] = true
	}

	assert.Greater(t, len(seen), 1, "loudness should change over a second")
}
