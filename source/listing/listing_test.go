package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apacheIndex = `<html><body><h1>Index of /grid</h1><table>
<tr><th><a href="?C=N;O=D">Name</a></th></tr>
<tr><td><a href="/">Parent Directory</a></td></tr>
<tr><td><a href="../">../</a></td></tr>
<tr><td><a href="Z-0.0/">Z-0.0/</a></td></tr>
<tr><td><a href="WAVE_PHOENIX-ACES-AGSS-COND-2011.fits">WAVE</a></td></tr>
<tr><td><a href="README.txt">README.txt</a></td></tr>
<tr><td><a href="https://elsewhere.example/x.fits">mirror</a></td></tr>
</table></body></html>`

const subIndex = `<html><body>
<a href="../">Parent</a>
<a href="lte05800-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits">a</a>
<a href="lte05900-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits">b</a>
<a href="deeper/">deeper/</a>
</body></html>`

type pages map[string]string

func (p pages) Page(_ context.Context, url string) ([]byte, error) {
	page, ok := p[url]
	if !ok {
		return nil, fmt.Errorf("HTTP 404 fetching %s", url)
	}
	return []byte(page), nil
}

func TestParse(t *testing.T) {
	entries, err := Parse("https://host/grid/", []byte(apacheIndex))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Name: "Z-0.0/", URL: "https://host/grid/Z-0.0/", Dir: true}, entries[0])
	assert.Equal(t, "WAVE_PHOENIX-ACES-AGSS-COND-2011.fits", entries[1].Name)
	assert.Equal(t, "README.txt", entries[2].Name)
}

func TestWalker_Walk(t *testing.T) {
	fetcher := pages{
		"https://host/grid/":              apacheIndex,
		"https://host/grid/Z-0.0/":        subIndex,
		"https://host/grid/Z-0.0/deeper/": `<a href="lte09000-4.50-0.0.x.fits">c</a>`,
	}

	var got []string
	for u, err := range (Walker{Fetcher: fetcher, Suffix: ".fits"}).Walk(context.Background(), "https://host/grid") {
		require.NoError(t, err)
		got = append(got, u)
	}
	assert.Equal(t, []string{
		"https://host/grid/Z-0.0/lte05800-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits",
		"https://host/grid/Z-0.0/lte05900-4.50-0.0.PHOENIX-ACES-AGSS-COND-2011-HiRes.fits",
		"https://host/grid/Z-0.0/deeper/lte09000-4.50-0.0.x.fits",
		"https://host/grid/WAVE_PHOENIX-ACES-AGSS-COND-2011.fits",
	}, got)

	got = nil
	for u, err := range (Walker{Fetcher: fetcher, Suffix: ".fits", MaxDepth: 1}).Walk(context.Background(), "https://host/grid/") {
		require.NoError(t, err)
		got = append(got, u)
	}
	assert.Len(t, got, 3, "depth limit must skip deeper/")

	got = nil
	for u := range (Walker{Fetcher: fetcher, Suffix: ".fits"}).Walk(context.Background(), "https://host/grid/") {
		got = append(got, u)
		break
	}
	assert.Len(t, got, 1, "walk stops when the consumer stops")
}

func TestWalker_FetchError(t *testing.T) {
	var errs []error
	for _, err := range (Walker{Fetcher: pages{}}).Walk(context.Background(), "https://host/none/") {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.Error(t, errs[0])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range (Walker{Fetcher: pages{}}).Walk(ctx, "https://host/none/") {
		assert.True(t, errors.Is(err, context.Canceled))
	}
}
