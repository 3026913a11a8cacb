// ABOUTME: Network fetch of clip payloads with write-through caching
// ABOUTME: Collapses concurrent fetches of one clip so its cache entry has a single writer
package fetch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/clip"
	"golang.org/x/sync/singleflight"
)

// Resolver maps a clip filename to a URL
type Resolver interface {
	ResolvePlayableURL(filename string) (string, bool)
}

// Store persists fetched payloads
type Store interface {
	Put(id int64, data []byte) error
}

// Fetcher downloads clips and writes them through to the cache
type Fetcher struct {
	resolver   Resolver
	downloader clip.Downloader
	store      Store
	downloaded *clip.Set
	group      singleflight.Group
}

// New creates a fetcher. store and downloaded may be nil.
func New(resolver Resolver, downloader clip.Downloader, store Store, downloaded *clip.Set) *Fetcher {
	return &Fetcher{
		resolver:   resolver,
		downloader: downloader,
		store:      store,
		downloaded: downloaded,
	}
}

// Fetch downloads c and persists it. On a storage failure the payload is
// still returned, together with an error wrapping clip.ErrStorage; any
// other error wraps clip.ErrFetch and carries no payload.
func (f *Fetcher) Fetch(ctx context.Context, c clip.Clip) ([]byte, error) {
	url, ok := f.resolver.ResolvePlayableURL(c.Filename)
	if !ok {
		return nil, fmt.Errorf("%w: no playable url for clip %s", clip.ErrFetch, c)
	}

	type result struct {
		data     []byte
		storeErr error
	}

	v, err, shared := f.group.Do(strconv.FormatInt(c.ID, 10), func() (any, error) {
		data, err := f.downloader.Download(ctx, url)
		if err != nil {
			return nil, err
		}
		return result{data: data, storeErr: f.persist(c, data)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: clip %s: %w", clip.ErrFetch, c, err)
	}
	if shared {
		log.Debug("Joined in-flight fetch", "clip", c.ID)
	}

	r := v.(result)
	return r.data, r.storeErr
}

func (f *Fetcher) persist(c clip.Clip, data []byte) error {
	if f.store == nil {
		return nil
	}
	if err := f.store.Put(c.ID, data); err != nil {
		return err
	}
	if f.downloaded != nil {
		f.downloaded.Add(c.ID)
	}
	return nil
}
