// Package strategy 提供可互换的候选检索策略
package strategy

import (
	"context"
	"fmt"

	"bom-matching-api/internal/domain/entity"
)

// Mode 检索策略模式。构造期选定的封闭枚举，不做运行期能力发现。
type Mode string

const (
	// ModeFamilyFirst 先解析物料族，再按族过滤候选（默认）
	ModeFamilyFirst Mode = "family_first"
	// ModeProductFirst 结构化解析 -> 向量化 -> 直接语义检索
	ModeProductFirst Mode = "product_first"
	// ModeHybrid 并发执行两种策略并做 RRF 融合
	ModeHybrid Mode = "hybrid"
)

// ParseMode 解析模式字符串；空串取默认 family_first
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeFamilyFirst, nil
	case ModeFamilyFirst, ModeProductFirst, ModeHybrid:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown search mode: %q", s)
	}
}

// Result 策略执行结果
type Result struct {
	// Matches 有序候选列表
	Matches []entity.SemanticCandidate
	// Fused 融合排名（仅 hybrid 产出），携带融合分
	Fused []entity.RankedMatch
	// Warnings 非致命告警
	Warnings []string
	// FamilyLabel 解析出的族标签，可为空
	FamilyLabel string
	// ClassificationCode 解析出的分类码，可为空
	ClassificationCode string
}

// Strategy 检索策略契约。三种实现可互换，编排器对具体实现无感知。
type Strategy interface {
	Execute(ctx context.Context, q entity.Query) (*Result, error)
}
