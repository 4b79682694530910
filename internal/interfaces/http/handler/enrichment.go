package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"bom-matching-api/internal/application/enrichment"
	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/interfaces/http/dto"
	"bom-matching-api/pkg/logger"
)

// FamilyCacheInvalidator 族解析缓存失效能力
type FamilyCacheInvalidator interface {
	InvalidateFamilies(ctx context.Context) error
}

// EnrichmentHandler 富化来源管理处理器
type EnrichmentHandler struct {
	registry    *enrichment.SourceRegistry
	familyCache FamilyCacheInvalidator
}

// NewEnrichmentHandler 创建富化来源处理器
func NewEnrichmentHandler(registry *enrichment.SourceRegistry, familyCache FamilyCacheInvalidator) *EnrichmentHandler {
	return &EnrichmentHandler{registry: registry, familyCache: familyCache}
}

// ListSources 列出当前已发现的富化来源
// @Summary 富化来源列表
// @Tags Enrichment
// @Produce json
// @Success 200 {object} dto.Response[dto.SourcesResponse]
// @Router /v1/enrichment/sources [get]
func (h *EnrichmentHandler) ListSources(c *gin.Context) {
	sources, err := h.registry.Sources(c.Request.Context())
	if err != nil {
		dto.InternalError(c, err.Error())
		return
	}
	respondSources(c, sources)
}

// RefreshSources 重新探测富化来源（供应商数据集上线后调用）
// 目录数据变更后同步清除族解析缓存，避免命中过期的族归属
// @Summary 刷新富化来源
// @Tags Enrichment
// @Produce json
// @Success 200 {object} dto.Response[dto.SourcesResponse]
// @Router /v1/enrichment/sources/refresh [post]
func (h *EnrichmentHandler) RefreshSources(c *gin.Context) {
	ctx := c.Request.Context()

	sources, err := h.registry.Refresh(ctx)
	if err != nil {
		dto.InternalError(c, err.Error())
		return
	}

	if h.familyCache != nil {
		if err := h.familyCache.InvalidateFamilies(ctx); err != nil {
			logger.Warn(ctx, "failed to invalidate family cache", "error", err.Error())
		}
	}

	respondSources(c, sources)
}

func respondSources(c *gin.Context, sources []*entity.VendorSource) {
	resp := &dto.SourcesResponse{Sources: make([]*dto.SourceItem, 0, len(sources))}
	for _, s := range sources {
		resp.Sources = append(resp.Sources, &dto.SourceItem{ID: s.ID, Table: s.Table})
	}
	dto.Success(c, resp)
}
