package strategy

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
	"bom-matching-api/pkg/logger"
)

// FamilyCache 族解析结果缓存端口，由 Redis 缓存实现
type FamilyCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// FamilyResolver 基于关键词（含同义词扩展）解析物料族。
// 缓存读写失败仅记录日志，不影响解析流程。
type FamilyResolver struct {
	families repository.FamilyRepository
	cache    FamilyCache
	ttl      time.Duration
}

// NewFamilyResolver 创建族解析器；cache 可为 nil 表示不启用缓存
func NewFamilyResolver(families repository.FamilyRepository, cache FamilyCache, ttl time.Duration) *FamilyResolver {
	return &FamilyResolver{families: families, cache: cache, ttl: ttl}
}

// Resolve 解析查询对应的物料族；无法解析返回 (nil, nil)
func (r *FamilyResolver) Resolve(ctx context.Context, q entity.Query) (*entity.MaterialFamily, error) {
	keywords := expandedKeywords(q)
	if len(keywords) == 0 {
		return nil, nil
	}

	key := cacheKey(keywords)
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, key); err == nil {
			var fam *entity.MaterialFamily
			if jsonErr := json.Unmarshal(data, &fam); jsonErr == nil {
				return fam, nil
			}
		}
	}

	families, err := r.families.FindFamiliesByKeywords(ctx, keywords)
	if err != nil {
		return nil, err
	}

	var fam *entity.MaterialFamily
	if len(families) > 0 {
		fam = families[0]
	}

	if r.cache != nil {
		// 负结果同样缓存，避免反复查库
		if err := r.cache.Set(ctx, key, fam, r.ttl); err != nil {
			logger.Warn(ctx, "family cache set failed", "key", key, "error", err)
		}
	}
	return fam, nil
}

// expandedKeywords 合并原始关键词与同义词扩展
func expandedKeywords(q entity.Query) []string {
	out := make([]string, 0, len(q.Keywords)+len(q.Synonyms))
	out = append(out, q.Keywords...)
	out = append(out, q.Synonyms...)
	return out
}

func cacheKey(keywords []string) string {
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Strings(sorted)
	return "bom:family:" + strings.Join(sorted, ",")
}
