package viewstate

import (
	"context"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pathway/internal/annotation"
)

// MetadataState tracks a gene's descriptive-metadata lookup.
type MetadataState int

const (
	MetadataLoading MetadataState = iota
	MetadataReady
	MetadataUnavailable
)

// GeneInfo is the cached metadata for one gene, plus its lookup state.
// Views render placeholders for Loading and Unavailable entries.
type GeneInfo struct {
	State   MetadataState
	Name    string
	Type    string
	Summary string
}

// Fetcher retrieves descriptive metadata for a batch of canonical ids.
type Fetcher interface {
	Fetch(ctx context.Context, ids []string) (map[string]annotation.GeneMetadata, error)
}

// MetadataCache resolves gene metadata in the background so view
// transitions never block on the network. Entries move Loading to Ready
// or Unavailable and a Ready entry is never downgraded by a late or
// failed fetch.
type MetadataCache struct {
	fetcher Fetcher
	cache   *gocache.Cache
	logger  *zap.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewMetadataCache creates a cache over the given fetcher. Entries do
// not expire; the cache lives only as long as the report session.
func NewMetadataCache(fetcher Fetcher) *MetadataCache {
	return &MetadataCache{
		fetcher: fetcher,
		cache:   gocache.New(gocache.NoExpiration, 0),
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for fetch diagnostics.
func (c *MetadataCache) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Request starts a background fetch for any ids not already known.
// Ids already Loading, Ready, or Unavailable are not re-requested.
func (c *MetadataCache) Request(ids []string) {
	c.mu.Lock()
	var missing []string
	for _, id := range ids {
		if _, ok := c.cache.Get(id); ok {
			continue
		}
		c.cache.Set(id, GeneInfo{State: MetadataLoading}, gocache.NoExpiration)
		missing = append(missing, id)
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.fetch(missing)
	}()
}

func (c *MetadataCache) fetch(ids []string) {
	results, err := c.fetcher.Fetch(context.Background(), ids)
	if err != nil {
		c.logger.Warn("gene metadata fetch failed",
			zap.Int("ids", len(ids)), zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if meta, ok := results[id]; ok {
			c.cache.Set(id, GeneInfo{
				State:   MetadataReady,
				Name:    meta.Name,
				Type:    meta.Type,
				Summary: meta.Summary,
			}, gocache.NoExpiration)
			continue
		}
		// Only entries still waiting on this fetch flip to Unavailable.
		if cur, ok := c.cache.Get(id); ok {
			if info, isInfo := cur.(GeneInfo); isInfo && info.State == MetadataReady {
				continue
			}
		}
		c.cache.Set(id, GeneInfo{State: MetadataUnavailable}, gocache.NoExpiration)
	}
}

// Get returns the current state for an id. An id never requested is
// reported Unavailable.
func (c *MetadataCache) Get(id string) GeneInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.cache.Get(id); ok {
		if info, isInfo := cur.(GeneInfo); isInfo {
			return info
		}
	}
	return GeneInfo{State: MetadataUnavailable}
}

// Wait blocks until all in-flight fetches complete.
func (c *MetadataCache) Wait() {
	c.wg.Wait()
}
