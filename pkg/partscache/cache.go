// Package partscache memoizes flattened template parts by template handle.
package partscache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/walteh/liquidscope/pkg/flatten"
	"github.com/walteh/liquidscope/pkg/template"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/singleflight"
)

const DefaultSize = 128

type ComputeFunc func(ctx context.Context) (flatten.TemplateParts, error)

// Cache is safe for concurrent use. Concurrent misses for the same template
// share one compute.
type Cache struct {
	store *lru.Cache[template.Handle, flatten.TemplateParts]
	group singleflight.Group

	mu  sync.Mutex
	gen map[template.Handle]uint64
	all uint64
}

func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	store, err := lru.New[template.Handle, flatten.TemplateParts](size)
	if err != nil {
		return nil, errors.Errorf("creating lru: %w", err)
	}
	return &Cache{store: store, gen: map[template.Handle]uint64{}}, nil
}

func (me *Cache) generation(key template.Handle) uint64 {
	me.mu.Lock()
	defer me.mu.Unlock()
	return me.all + me.gen[key]
}

// GetOrCompute returns the cached parts for key or runs compute. Errors are
// not cached. A result computed while key was invalidated is returned but not
// stored.
func (me *Cache) GetOrCompute(ctx context.Context, key template.Handle, compute ComputeFunc) (flatten.TemplateParts, error) {
	if parts, ok := me.store.Get(key); ok {
		zerolog.Ctx(ctx).Trace().Str("template", key.String()).Msg("parts cache hit")
		return parts, nil
	}

	v, err, shared := me.group.Do(key.String(), func() (any, error) {
		// a flight that just finished may have stored it
		if parts, ok := me.store.Get(key); ok {
			return parts, nil
		}
		gen := me.generation(key)
		parts, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if me.generation(key) == gen {
			me.store.Add(key, parts)
		}
		return parts, nil
	})
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("template", key.String()).Bool("shared", shared).Msg("parts computed")
	return v.(flatten.TemplateParts), nil
}

func (me *Cache) Invalidate(key template.Handle) {
	me.mu.Lock()
	me.gen[key]++
	me.mu.Unlock()
	me.store.Remove(key)
	me.group.Forget(key.String())
}

func (me *Cache) Purge() {
	me.mu.Lock()
	me.all++
	me.mu.Unlock()
	me.store.Purge()
}

func (me *Cache) Len() int {
	return me.store.Len()
}
