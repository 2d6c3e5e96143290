package perfstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccumulator(t *testing.T) {
	a := Accumulator{}
	require.Equal(t, 0.0, a.Average())
	a.AddSample(0.9)
	a.AddSample(0.8)
	a.AddSample(0.7)
	require.Equal(t, int64(3), a.Samples)
	require.InDelta(t, 0.8, a.Average(), 1e-9)
	a.Reset()
	require.Equal(t, int64(0), a.Samples)
	require.Equal(t, 0.0, a.Average())
}

func TestTimeAccumulator(t *testing.T) {
	a := TimeAccumulator{}
	require.Equal(t, time.Duration(0), a.Average())
	a.AddSample(10 * time.Millisecond)
	a.AddSample(30 * time.Millisecond)
	require.Equal(t, int64(2), a.Samples)
	require.Equal(t, 40*time.Millisecond, a.Total)
	require.Equal(t, 20*time.Millisecond, a.Average())
	a.Reset()
	require.Equal(t, int64(0), a.Samples)
	require.Equal(t, time.Duration(0), a.Average())
}
