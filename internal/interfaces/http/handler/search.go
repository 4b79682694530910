// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bom-matching-api/internal/application/search"
	"bom-matching-api/internal/infrastructure/messaging"
	"bom-matching-api/internal/interfaces/http/dto"
)

// LineItemPublisher 行项消息发布能力
type LineItemPublisher interface {
	PublishLineItem(ctx context.Context, item *messaging.LineItemMessage) (string, error)
}

// SearchHandler 物料匹配检索处理器
type SearchHandler struct {
	orchestrator *search.Orchestrator
	publisher    LineItemPublisher
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(orchestrator *search.Orchestrator, publisher LineItemPublisher) *SearchHandler {
	return &SearchHandler{orchestrator: orchestrator, publisher: publisher}
}

// Search 匹配物料描述
// @Summary 物料匹配检索
// @Description 将自由文本物料描述匹配到产品目录候选并附带供应商富化信息
// @Tags Match
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/match/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	outcome, err := h.orchestrator.Search(c.Request.Context(), req.Query, req.Mode)
	if err != nil {
		dto.AppError(c, err)
		return
	}

	dto.Success(c, dto.FromOutcome(outcome))
}

// EnqueueLineItem 异步提交 BOM 行项匹配，由 line-item-worker 消费
// @Summary 行项异步匹配
// @Tags Match
// @Accept json
// @Produce json
// @Param body body dto.LineItemRequest true "行项请求"
// @Success 202 {object} dto.Response[dto.LineItemAccepted]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/match/line-items [post]
func (h *SearchHandler) EnqueueLineItem(c *gin.Context) {
	var req dto.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if h.publisher == nil {
		dto.ServiceUnavailable(c, "async matching is not configured")
		return
	}

	lineItemID := req.LineItemID
	if lineItemID == "" {
		lineItemID = uuid.NewString()
	}

	msgID, err := h.publisher.PublishLineItem(c.Request.Context(), &messaging.LineItemMessage{
		LineItemID:  lineItemID,
		BOMID:       req.BOMID,
		RawText:     req.Query,
		Mode:        req.Mode,
		RequestedAt: time.Now().Unix(),
	})
	if err != nil {
		dto.InternalError(c, "failed to enqueue line item: "+err.Error())
		return
	}

	dto.Accepted(c, &dto.LineItemAccepted{LineItemID: lineItemID, MessageID: msgID})
}
