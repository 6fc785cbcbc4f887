package transcode

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLiveReaderFollowsClock(t *testing.T) {
	data := &AudioData{PCM: ramp(100), SampleRate: 10} // 10 s of audio
	reader, err := NewLiveReader(data, 4)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	reader.now = clock.Now
	ctx := context.Background()

	// before size samples have played, the first window is served
	w, err := reader.NextWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3}, w.Samples)
	assert.Zero(t, reader.Offset())

	clock.Advance(2 * time.Second)
	w, err = reader.NextWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{16, 17, 18, 19}, w.Samples)
	assert.Equal(t, 1600*time.Millisecond, reader.Offset())

	// same instant, same window
	w, err = reader.NextWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{16, 17, 18, 19}, w.Samples)

	clock.Advance(8 * time.Second)
	w, err = reader.NextWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{96, 97, 98, 99}, w.Samples)

	clock.Advance(time.Second)
	_, err = reader.NextWindow(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewLiveReaderValidation(t *testing.T) {
	_, err := NewLiveReader(nil, 4)
	assert.Error(t, err)
	_, err = NewLiveReader(&AudioData{PCM: ramp(8)}, 4)
	assert.Error(t, err)
	_, err = NewLiveReader(&AudioData{PCM: ramp(8), SampleRate: 8}, 0)
	assert.Error(t, err)
}
