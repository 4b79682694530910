package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bom-matching-api/internal/infrastructure/messaging"
	"bom-matching-api/internal/interfaces/http/dto"
)

type fakeLineItemPublisher struct {
	last *messaging.LineItemMessage
	err  error
}

func (f *fakeLineItemPublisher) PublishLineItem(_ context.Context, item *messaging.LineItemMessage) (string, error) {
	f.last = item
	if f.err != nil {
		return "", f.err
	}
	return "1700000000000-0", nil
}

func newEnqueueRouter(publisher LineItemPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSearchHandler(nil, publisher)
	engine := gin.New()
	engine.POST("/v1/match/line-items", h.EnqueueLineItem)
	return engine
}

func TestEnqueueLineItem(t *testing.T) {
	publisher := &fakeLineItemPublisher{}
	engine := newEnqueueRouter(publisher)

	body := `{"query": "pvc pipe 1/2\" sch40", "bom_id": "bom-7", "mode": "hybrid"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/match/line-items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.NotNil(t, publisher.last)
	assert.Equal(t, `pvc pipe 1/2" sch40`, publisher.last.RawText)
	assert.Equal(t, "bom-7", publisher.last.BOMID)
	assert.Equal(t, "hybrid", publisher.last.Mode)
	assert.NotEmpty(t, publisher.last.LineItemID, "行项 ID 缺省时应由服务生成")
	assert.NotZero(t, publisher.last.RequestedAt)

	var resp dto.Response[*dto.LineItemAccepted]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, publisher.last.LineItemID, resp.Data.LineItemID)
	assert.Equal(t, "1700000000000-0", resp.Data.MessageID)
}

func TestEnqueueLineItemKeepsProvidedID(t *testing.T) {
	publisher := &fakeLineItemPublisher{}
	engine := newEnqueueRouter(publisher)

	body := `{"query": "copper fitting", "line_item_id": "li-42"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/match/line-items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.NotNil(t, publisher.last)
	assert.Equal(t, "li-42", publisher.last.LineItemID)
}

func TestEnqueueLineItemMissingQuery(t *testing.T) {
	publisher := &fakeLineItemPublisher{}
	engine := newEnqueueRouter(publisher)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/match/line-items", strings.NewReader(`{"bom_id": "bom-7"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, publisher.last)
}

func TestEnqueueLineItemPublishFailure(t *testing.T) {
	publisher := &fakeLineItemPublisher{err: errors.New("stream unavailable")}
	engine := newEnqueueRouter(publisher)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/match/line-items", strings.NewReader(`{"query": "anchor bolt"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to enqueue line item")
}

func TestEnqueueLineItemPublisherNotConfigured(t *testing.T) {
	engine := newEnqueueRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/match/line-items", strings.NewReader(`{"query": "anchor bolt"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
