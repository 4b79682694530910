package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bom-matching-api/internal/domain/entity"
)

type fakeEnrichmentRepo struct {
	sources      []*entity.VendorSource
	discoverErr  error
	discoverHits int32

	mu      sync.Mutex
	records map[string][]*entity.EnrichmentRecord // source ID -> 记录
	fails   map[string]error                      // source ID -> 查询错误

	fetchDelay time.Duration
	inFlight   int32
	maxSeen    int32
}

func (f *fakeEnrichmentRepo) DiscoverSources(context.Context) ([]*entity.VendorSource, error) {
	atomic.AddInt32(&f.discoverHits, 1)
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.sources, nil
}

func (f *fakeEnrichmentRepo) FetchEnrichment(ctx context.Context, source *entity.VendorSource, _ []string) ([]*entity.EnrichmentRecord, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		prev := atomic.LoadInt32(&f.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&f.maxSeen, prev, cur) {
			break
		}
	}
	if f.fetchDelay > 0 {
		select {
		case <-time.After(f.fetchDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fails[source.ID]; ok {
		return nil, err
	}
	return f.records[source.ID], nil
}

func src(id string) *entity.VendorSource {
	return &entity.VendorSource{ID: id, Table: "vendor_enrichment_" + id}
}

func rec(candidateID, sourceID string) *entity.EnrichmentRecord {
	return &entity.EnrichmentRecord{
		CandidateID:   candidateID,
		SourceID:      sourceID,
		UsageGuidance: "guidance from " + sourceID,
	}
}

func TestSourceRegistry(t *testing.T) {
	t.Run("discovers once under concurrent access", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{sources: []*entity.VendorSource{src("acme"), src("northco")}}
		reg := NewSourceRegistry(repo)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sources, err := reg.Sources(context.Background())
				assert.NoError(t, err)
				assert.Len(t, sources, 2)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&repo.discoverHits))
	})

	t.Run("invalidate forces rediscovery", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{sources: []*entity.VendorSource{src("acme")}}
		reg := NewSourceRegistry(repo)

		_, err := reg.Sources(context.Background())
		require.NoError(t, err)

		repo.sources = append(repo.sources, src("northco"))
		reg.Invalidate()

		sources, err := reg.Sources(context.Background())
		require.NoError(t, err)
		assert.Len(t, sources, 2)
		assert.Equal(t, int32(2), atomic.LoadInt32(&repo.discoverHits))
	})

	t.Run("discovery error is not cached", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{discoverErr: errors.New("db down")}
		reg := NewSourceRegistry(repo)

		_, err := reg.Sources(context.Background())
		require.Error(t, err)

		repo.discoverErr = nil
		repo.sources = []*entity.VendorSource{src("acme")}
		sources, err := reg.Sources(context.Background())
		require.NoError(t, err)
		assert.Len(t, sources, 1)
	})
}

func TestFanout(t *testing.T) {
	t.Run("merges successful sources and warns per failed source", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{
			sources: []*entity.VendorSource{src("s1"), src("s2"), src("s3"), src("s4")},
			records: map[string][]*entity.EnrichmentRecord{
				"s1": {rec("a", "s1")},
				"s3": {rec("b", "s3")},
			},
			fails: map[string]error{
				"s2": errors.New("timeout"),
				"s4": errors.New("bad schema"),
			},
		}
		f := NewFanout(repo, NewSourceRegistry(repo), 8)

		merged, warnings, err := f.Enrich(context.Background(), []string{"a", "b", "c"})
		require.NoError(t, err)
		require.Len(t, merged, 2)
		assert.Equal(t, "s1", merged["a"].SourceID)
		assert.Equal(t, "s3", merged["b"].SourceID)
		assert.Nil(t, merged["c"])

		require.Len(t, warnings, 2)
		assert.Contains(t, warnings[0], "s2")
		assert.Contains(t, warnings[1], "s4")
	})

	t.Run("later source wins on conflict", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{
			sources: []*entity.VendorSource{src("s1"), src("s2")},
			records: map[string][]*entity.EnrichmentRecord{
				"s1": {rec("a", "s1")},
				"s2": {rec("a", "s2")},
			},
		}
		f := NewFanout(repo, NewSourceRegistry(repo), 8)

		merged, warnings, err := f.Enrich(context.Background(), []string{"a"})
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, "s2", merged["a"].SourceID)
	})

	t.Run("bounds in-flight source queries", func(t *testing.T) {
		sources := make([]*entity.VendorSource, 0, 12)
		for i := 0; i < 12; i++ {
			sources = append(sources, src(fmt.Sprintf("s%d", i)))
		}
		repo := &fakeEnrichmentRepo{sources: sources, fetchDelay: 10 * time.Millisecond}
		f := NewFanout(repo, NewSourceRegistry(repo), 3)

		_, _, err := f.Enrich(context.Background(), []string{"a"})
		require.NoError(t, err)
		assert.LessOrEqual(t, atomic.LoadInt32(&repo.maxSeen), int32(3))
	})

	t.Run("cancellation aborts instead of returning partial data", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{
			sources:    []*entity.VendorSource{src("s1"), src("s2")},
			records:    map[string][]*entity.EnrichmentRecord{"s1": {rec("a", "s1")}},
			fetchDelay: 100 * time.Millisecond,
		}
		f := NewFanout(repo, NewSourceRegistry(repo), 8)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		merged, _, err := f.Enrich(ctx, []string{"a"})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, merged)
	})

	t.Run("no candidates skips discovery", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{discoverErr: errors.New("should not be called")}
		f := NewFanout(repo, NewSourceRegistry(repo), 8)

		merged, warnings, err := f.Enrich(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, merged)
		assert.Empty(t, warnings)
	})

	t.Run("discovery failure is an error", func(t *testing.T) {
		repo := &fakeEnrichmentRepo{discoverErr: errors.New("db down")}
		f := NewFanout(repo, NewSourceRegistry(repo), 8)
		_, _, err := f.Enrich(context.Background(), []string{"a"})
		assert.Error(t, err)
	})
}
