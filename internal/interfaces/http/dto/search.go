// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"bom-matching-api/internal/domain/entity"
)

// SearchRequest 物料匹配检索请求
type SearchRequest struct {
	// Query BOM 行项的自由文本物料描述
	Query string `json:"query" binding:"required,max=2000"`
	// Mode 检索模式: family_first / product_first / hybrid，空值取服务配置
	Mode string `json:"mode,omitempty"`
}

// LineItemRequest 异步行项匹配请求
type LineItemRequest struct {
	// LineItemID 行项标识，缺省时由服务生成
	LineItemID string `json:"line_item_id,omitempty"`
	// BOMID 所属物料清单标识
	BOMID string `json:"bom_id,omitempty"`
	// Query BOM 行项的自由文本物料描述
	Query string `json:"query" binding:"required,max=2000"`
	// Mode 检索模式，空值取服务配置
	Mode string `json:"mode,omitempty"`
}

// LineItemAccepted 行项入队回执
type LineItemAccepted struct {
	LineItemID string `json:"line_item_id"`
	MessageID  string `json:"message_id"`
}

// SearchResponse 物料匹配检索响应
type SearchResponse struct {
	FamilyLabel        string        `json:"family_label,omitempty"`
	ClassificationCode string        `json:"classification_code,omitempty"`
	Matches            []*MatchItem  `json:"matches"`
	Warnings           []string      `json:"warnings,omitempty"`
	Normalized         *QuerySummary `json:"normalized,omitempty"`
	ElapsedMs          int64         `json:"elapsed_ms"`
}

// QuerySummary 归一化后的查询摘要
type QuerySummary struct {
	Keywords     []string `json:"keywords,omitempty"`
	SizeVariants []string `json:"size_variants,omitempty"`
	Synonyms     []string `json:"synonyms,omitempty"`
}

// MatchItem 单条匹配结果
type MatchItem struct {
	ID                 string            `json:"id"`
	Vendor             string            `json:"vendor,omitempty"`
	DisplayName        string            `json:"display_name"`
	ClassificationCode string            `json:"classification_code,omitempty"`
	FamilyLabel        string            `json:"family_label,omitempty"`
	Similarity         *float64          `json:"similarity,omitempty"`
	FusionScore        *float64          `json:"fusion_score,omitempty"`
	Enrichment         *EnrichmentDetail `json:"enrichment,omitempty"`
}

// EnrichmentDetail 供应商富化详情
type EnrichmentDetail struct {
	SourceID      string            `json:"source_id"`
	UsageGuidance string            `json:"usage_guidance,omitempty"`
	KeyFeatures   []string          `json:"key_features,omitempty"`
	Specs         map[string]string `json:"specs,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// SourcesResponse 富化来源列表响应
type SourcesResponse struct {
	Sources []*SourceItem `json:"sources"`
}

// SourceItem 单个富化来源
type SourceItem struct {
	ID    string `json:"id"`
	Table string `json:"table"`
}

// FromOutcome 将检索结果转换为响应 DTO
func FromOutcome(outcome *entity.SearchOutcome) *SearchResponse {
	resp := &SearchResponse{
		FamilyLabel:        outcome.FamilyLabel,
		ClassificationCode: outcome.ClassificationCode,
		Matches:            make([]*MatchItem, 0, len(outcome.Matches)),
		Warnings:           outcome.Warnings,
		ElapsedMs:          outcome.Elapsed.Milliseconds(),
		Normalized: &QuerySummary{
			Keywords:     outcome.Query.Keywords,
			SizeVariants: outcome.Query.SizeVariants,
			Synonyms:     outcome.Query.Synonyms,
		},
	}
	for _, m := range outcome.Matches {
		item := &MatchItem{
			ID:                 m.ID,
			Vendor:             m.Vendor,
			DisplayName:        m.DisplayName,
			ClassificationCode: m.ClassificationCode,
			FamilyLabel:        m.FamilyLabel,
			Similarity:         m.Similarity,
			FusionScore:        m.FusionScore,
		}
		if m.Enrichment != nil {
			item.Enrichment = &EnrichmentDetail{
				SourceID:      m.Enrichment.SourceID,
				UsageGuidance: m.Enrichment.UsageGuidance,
				KeyFeatures:   m.Enrichment.KeyFeatures,
				Specs:         m.Enrichment.Specs,
				Attributes:    m.Enrichment.Attributes,
			}
		}
		resp.Matches = append(resp.Matches, item)
	}
	return resp
}
