package spotify

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// artCache holds the most recently fetched cover image keyed by URL. One
// entry is enough: the deck only ever shows the current track's art.
type artCache struct {
	mu  sync.Mutex
	url string
	img image.Image
}

var artHTTPClient = &http.Client{Timeout: 10 * time.Second}

// Artwork fetches and decodes the cover image at url, serving repeated
// requests for the same URL from cache. Album art is hosted on Spotify's
// CDN and needs no authorization.
func (c *Controller) Artwork(ctx context.Context, url string) (image.Image, error) {
	if url == "" {
		return nil, errors.New("no artwork available")
	}

	c.artCache.mu.Lock()
	if c.artCache.url == url && c.artCache.img != nil {
		img := c.artCache.img
		c.artCache.mu.Unlock()
		return img, nil
	}
	c.artCache.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building artwork request")
	}
	resp, err := artHTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching artwork")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching artwork: unexpected status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "decoding artwork")
	}

	c.artCache.mu.Lock()
	c.artCache.url = url
	c.artCache.img = img
	c.artCache.mu.Unlock()

	return img, nil
}
