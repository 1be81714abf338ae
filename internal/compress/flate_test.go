package compress

import (
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlate_RoundTrip(t *testing.T) {
	f := NewFlate()
	tests := []string{
		"",
		"a",
		`{"data":[["copper-cable","assembling-machine-1",1,[]]],"version":5}`,
		strings.Repeat("iron-gear-wheel,", 500),
		"héllo   wörld",
	}
	for _, text := range tests {
		compressed, err := f.Compress(text)
		require.NoError(t, err)
		got, err := f.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestFlate_ShrinksRepetitiveText(t *testing.T) {
	text := strings.Repeat(`["copper-cable",null,"1",[],null,0],`, 100)
	compressed, err := NewFlate().Compress(text)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(text)/4)
}

func TestFlate_Levels(t *testing.T) {
	text := strings.Repeat("water-barrel ", 200)
	for _, level := range []int{flate.HuffmanOnly, flate.BestSpeed, flate.DefaultCompression, flate.BestCompression} {
		f := NewFlate(WithLevel(level))
		compressed, err := f.Compress(text)
		require.NoError(t, err, "level %d", level)
		got, err := f.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestFlate_InvalidLevel(t *testing.T) {
	_, err := NewFlate(WithLevel(42)).Compress("x")
	assert.Error(t, err)
}

func TestFlate_Corrupt(t *testing.T) {
	_, err := NewFlate().Decompress([]byte{0xff, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestFlate_MaxSize(t *testing.T) {
	text := strings.Repeat("x", 1000)
	compressed, err := NewFlate().Compress(text)
	require.NoError(t, err)

	_, err = NewFlate(WithMaxSize(999)).Decompress(compressed)
	assert.ErrorIs(t, err, ErrTooLarge)

	got, err := NewFlate(WithMaxSize(1000)).Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}
