package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_Key(t *testing.T) {
	b, err := New(Options{Endpoint: "localhost:9000", Name: "phoenix", Prefix: "/HiResFITS/"})
	require.NoError(t, err)

	assert.Equal(t, "HiResFITS/Z-0.0/lte05800-4.50-0.0.fits", b.Key("Z-0.0/lte05800-4.50-0.0.fits"))
	assert.Equal(t, "HiResFITS/Z-0.0/lte05800-4.50-0.0.fits", b.Key("HiResFITS/Z-0.0/lte05800-4.50-0.0.fits"))
	assert.Equal(t, "HiResFITS/WAVE.fits", b.Key("/WAVE.fits"))

	plain, err := New(Options{Endpoint: "localhost:9000", Name: "phoenix"})
	require.NoError(t, err)
	assert.Equal(t, "a/b.fits", plain.Key("a/b.fits"))
}

func TestNew_RequiresName(t *testing.T) {
	_, err := New(Options{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}
