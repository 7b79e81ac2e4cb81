package templates

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	imagepkg "github.com/youruser/memeapp/internal/image"
	"github.com/youruser/memeapp/internal/util"
)

// Images resolves template URLs to decoded images. Remote URLs are fetched
// over HTTP; anything else is read from under the data dir.
type Images struct {
	dataDir string
	cache   *cache.Cache
	fetch   func(ctx context.Context, url string) (image.Image, error)
}

func NewImages(dataDir string) *Images {
	return &Images{
		dataDir: dataDir,
		cache:   cache.New(30*time.Minute, 1*time.Hour),
		fetch:   imagepkg.DownloadImage,
	}
}

func (m *Images) Load(ctx context.Context, t Template) (image.Image, error) {
	if v, ok := m.cache.Get(t.ID); ok {
		return v.(image.Image), nil
	}
	var (
		img image.Image
		err error
	)
	if strings.HasPrefix(t.URL, "http://") || strings.HasPrefix(t.URL, "https://") {
		img, err = m.fetch(ctx, t.URL)
	} else {
		path, ok := util.SafeJoin(m.dataDir, t.URL)
		if !ok {
			return nil, fmt.Errorf("template %s: path %q escapes data dir", t.ID, t.URL)
		}
		img, err = imagepkg.OpenImage(path)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("template %s: image %s: %w", t.ID, t.URL, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", t.ID, err)
	}
	m.cache.SetDefault(t.ID, img)
	return img, nil
}

// Warm loads every template in parallel. Failures are logged, not returned,
// so a missing file only affects its own template.
func (m *Images) Warm(ctx context.Context, list []Template) int {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	loaded := make([]bool, len(list))
	for i, t := range list {
		g.Go(func() error {
			if _, err := m.Load(ctx, t); err != nil {
				slog.Warn("template warm-up failed", "template", t.ID, "error", err)
				return nil
			}
			loaded[i] = true
			return nil
		})
	}
	_ = g.Wait()
	n := 0
	for _, ok := range loaded {
		if ok {
			n++
		}
	}
	return n
}
