package hierarchy

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/manojSRawat/sunbird-resource-library/internal/infra/logx"
)

// Source fetches the hierarchy document of a collection.
type Source interface {
	FetchHierarchy(ctx context.Context, collectionID string) (Document, error)
}

// CachedSource keeps fetched hierarchies for a short time so that the picker
// and the tree view share one request. Invalidate after an import.
type CachedSource struct {
	src   Source
	cache *cache.Cache
}

// NewCachedSource wraps src. A non-positive ttl disables caching.
func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	s := &CachedSource{src: src}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *CachedSource) FetchHierarchy(ctx context.Context, collectionID string) (Document, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(collectionID); ok {
			logx.Debugf("hierarchy cache hit for %s", collectionID)
			return v.(Document), nil
		}
	}
	doc, err := s.src.FetchHierarchy(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(collectionID, doc, cache.DefaultExpiration)
	}
	return doc, nil
}

// Invalidate drops the cached hierarchy of collectionID.
func (s *CachedSource) Invalidate(collectionID string) {
	if s.cache != nil {
		s.cache.Delete(collectionID)
	}
}
