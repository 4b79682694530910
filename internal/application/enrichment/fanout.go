package enrichment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
	"bom-matching-api/pkg/logger"
	"bom-matching-api/pkg/metrics"
)

const defaultMaxInFlight = 8

// Fanout 对所有已发现来源做有界并发富化查询。
// 单来源失败转为告警继续，调用方取消则整体中止。
type Fanout struct {
	repo        repository.EnrichmentRepository
	registry    *SourceRegistry
	maxInFlight int
}

func NewFanout(repo repository.EnrichmentRepository, registry *SourceRegistry, maxInFlight int) *Fanout {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	return &Fanout{repo: repo, registry: registry, maxInFlight: maxInFlight}
}

// Enrich 按候选 ID 集合扇出查询全部来源，合并为候选 ID -> 记录映射。
// 同一候选被多个来源覆盖时，按来源发现顺序后写覆盖。
// 返回的告警按来源顺序列出失败来源。
func (f *Fanout) Enrich(ctx context.Context, candidateIDs []string) (map[string]*entity.EnrichmentRecord, []string, error) {
	ids := dedupe(candidateIDs)
	if len(ids) == 0 {
		return map[string]*entity.EnrichmentRecord{}, nil, nil
	}

	sources, err := f.registry.Sources(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("discover enrichment sources: %w", err)
	}
	if len(sources) == 0 {
		return map[string]*entity.EnrichmentRecord{}, nil, nil
	}

	// 先按索引收集，再按来源顺序合并，避免共享状态
	records := make([][]*entity.EnrichmentRecord, len(sources))
	failures := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.maxInFlight)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			metrics.EnrichmentInFlight.Inc()
			defer metrics.EnrichmentInFlight.Dec()

			recs, err := f.repo.FetchEnrichment(gctx, src, ids)
			if err != nil {
				// 取消向上传播，来源自身的失败只记录
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failures[i] = err
				metrics.EnrichmentSourceQueries.WithLabelValues(src.ID, "error").Inc()
				logger.Warn(gctx, "enrichment source query failed", "source", src.ID, "error", err)
				return nil
			}
			records[i] = recs
			metrics.EnrichmentSourceQueries.WithLabelValues(src.ID, "success").Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	merged := make(map[string]*entity.EnrichmentRecord, len(ids))
	var warnings []string
	for i, src := range sources {
		if failures[i] != nil {
			warnings = append(warnings,
				fmt.Sprintf("enrichment source %s unavailable: %v", src.ID, failures[i]))
			continue
		}
		for _, rec := range records[i] {
			if rec == nil || rec.CandidateID == "" {
				continue
			}
			merged[rec.CandidateID] = rec
		}
	}
	return merged, warnings, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
