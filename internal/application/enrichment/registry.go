// Package enrichment 实现供应商富化来源发现与并发扇出查询
package enrichment

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
	"bom-matching-api/pkg/logger"
	"bom-matching-api/pkg/metrics"
)

// SourceRegistry 富化来源注册表。来源在运行期探测并缓存，
// 缓存失效后由单个调用方重建，其余调用方等待结果。
type SourceRegistry struct {
	repo repository.EnrichmentRepository

	mu      sync.RWMutex
	sources []*entity.VendorSource
	loaded  bool

	sf singleflight.Group
}

func NewSourceRegistry(repo repository.EnrichmentRepository) *SourceRegistry {
	return &SourceRegistry{repo: repo}
}

// Sources 返回缓存的来源列表；未加载时触发一次发现
func (r *SourceRegistry) Sources(ctx context.Context) ([]*entity.VendorSource, error) {
	r.mu.RLock()
	if r.loaded {
		sources := r.sources
		r.mu.RUnlock()
		return sources, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.sf.Do("discover", func() (interface{}, error) {
		r.mu.RLock()
		if r.loaded {
			sources := r.sources
			r.mu.RUnlock()
			return sources, nil
		}
		r.mu.RUnlock()

		sources, err := r.repo.DiscoverSources(ctx)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sources = sources
		r.loaded = true
		r.mu.Unlock()

		metrics.EnrichmentSourcesDiscovered.Set(float64(len(sources)))
		logger.Info(ctx, "enrichment sources discovered", "count", len(sources))
		return sources, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*entity.VendorSource), nil
}

// Invalidate 使缓存失效，下次访问时重新探测
func (r *SourceRegistry) Invalidate() {
	r.mu.Lock()
	r.sources = nil
	r.loaded = false
	r.mu.Unlock()
}

// Refresh 立即重新探测并替换缓存
func (r *SourceRegistry) Refresh(ctx context.Context) ([]*entity.VendorSource, error) {
	r.Invalidate()
	return r.Sources(ctx)
}
