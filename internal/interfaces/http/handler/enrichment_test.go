package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bom-matching-api/internal/application/enrichment"
	"bom-matching-api/internal/domain/entity"
)

type fakeEnrichmentRepo struct {
	sources []*entity.VendorSource
}

func (f *fakeEnrichmentRepo) DiscoverSources(_ context.Context) ([]*entity.VendorSource, error) {
	return f.sources, nil
}

func (f *fakeEnrichmentRepo) FetchEnrichment(_ context.Context, _ *entity.VendorSource, _ []string) ([]*entity.EnrichmentRecord, error) {
	return nil, nil
}

type fakeFamilyInvalidator struct {
	calls int
	err   error
}

func (f *fakeFamilyInvalidator) InvalidateFamilies(_ context.Context) error {
	f.calls++
	return f.err
}

func newEnrichmentRouter(invalidator FamilyCacheInvalidator) (*gin.Engine, *fakeEnrichmentRepo) {
	gin.SetMode(gin.TestMode)
	repo := &fakeEnrichmentRepo{sources: []*entity.VendorSource{
		{ID: "acme_supply", Table: "vendor_enrichment_acme_supply"},
	}}
	h := NewEnrichmentHandler(enrichment.NewSourceRegistry(repo), invalidator)
	engine := gin.New()
	engine.GET("/v1/enrichment/sources", h.ListSources)
	engine.POST("/v1/enrichment/sources/refresh", h.RefreshSources)
	return engine, repo
}

func TestRefreshSourcesInvalidatesFamilyCache(t *testing.T) {
	invalidator := &fakeFamilyInvalidator{}
	engine, _ := newEnrichmentRouter(invalidator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/enrichment/sources/refresh", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, invalidator.calls)
	assert.Contains(t, w.Body.String(), "acme_supply")
}

func TestRefreshSourcesToleratesInvalidationFailure(t *testing.T) {
	invalidator := &fakeFamilyInvalidator{err: assert.AnError}
	engine, _ := newEnrichmentRouter(invalidator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/enrichment/sources/refresh", nil)
	engine.ServeHTTP(w, req)

	// 缓存清理失败不应阻断来源刷新
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, invalidator.calls)
}

func TestListSourcesDoesNotTouchFamilyCache(t *testing.T) {
	invalidator := &fakeFamilyInvalidator{}
	engine, _ := newEnrichmentRouter(invalidator)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/enrichment/sources", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, invalidator.calls)
}
