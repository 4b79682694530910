// Package fusion 提供倒数排名融合（Reciprocal Rank Fusion）
package fusion

import (
	"sort"

	"bom-matching-api/internal/domain/entity"
)

// DefaultK RRF 平滑常数默认值
const DefaultK = 60

// Fuser 排名融合器。给定相同的输入列表与 k，输出完全确定。
type Fuser struct {
	k float64
}

// NewFuser 创建融合器；k <= 0 时取默认值
func NewFuser(k int) *Fuser {
	if k <= 0 {
		k = DefaultK
	}
	return &Fuser{k: float64(k)}
}

// Fuse 将若干条独立有序的候选列表融合为一个排序。
// 每个列表为元素贡献 1/(k+rank) 分（rank 为 1-based 位置），缺席列表贡献 0；
// 各列表得分按候选 ID 累加，按总分降序输出。
// 平分时按元素在全部输入列表中首次出现的先后决定次序（稳定、确定）。
func (f *Fuser) Fuse(lists ...[]entity.SemanticCandidate) []entity.RankedMatch {
	scores := make(map[string]float64)
	firstSeen := make(map[string]int)
	candidates := make(map[string]entity.SemanticCandidate)

	order := 0
	for _, list := range lists {
		for i, c := range list {
			if _, ok := firstSeen[c.ID]; !ok {
				firstSeen[c.ID] = order
				candidates[c.ID] = c
				order++
			} else if c.Similarity > candidates[c.ID].Similarity {
				// 同一候选在多个列表出现时保留相似度更高的版本
				candidates[c.ID] = c
			}
			scores[c.ID] += 1 / (f.k + float64(i+1))
		}
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		if scores[ids[a]] != scores[ids[b]] {
			return scores[ids[a]] > scores[ids[b]]
		}
		return firstSeen[ids[a]] < firstSeen[ids[b]]
	})

	out := make([]entity.RankedMatch, 0, len(ids))
	for i, id := range ids {
		out = append(out, entity.RankedMatch{
			Candidate:   candidates[id],
			Rank:        i + 1,
			FusionScore: scores[id],
		})
	}
	return out
}
