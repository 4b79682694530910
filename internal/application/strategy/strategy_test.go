package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bom-matching-api/internal/application/normalize"
	"bom-matching-api/internal/application/queryparse"
	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/internal/domain/repository"
	pkgErrors "bom-matching-api/pkg/errors"
)

type fakeFamilyRepo struct {
	families []*entity.MaterialFamily
	err      error
	calls    int
}

func (f *fakeFamilyRepo) FindFamiliesByKeywords(_ context.Context, keywords []string) ([]*entity.MaterialFamily, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.MaterialFamily
	for _, fam := range f.families {
		for _, kw := range keywords {
			if strings.Contains(strings.ToLower(fam.DisplayName), kw) || strings.Contains(fam.Label, kw) {
				out = append(out, fam)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeFamilyRepo) GetByLabel(_ context.Context, label string) (*entity.MaterialFamily, error) {
	for _, fam := range f.families {
		if fam.Label == label {
			return fam, nil
		}
	}
	return nil, nil
}

type fakeCandidateRepo struct {
	products   []*entity.CandidateProduct
	err        error
	lastFilter repository.CandidateFilter
}

func (f *fakeCandidateRepo) FindCandidates(_ context.Context, filter repository.CandidateFilter) ([]*entity.CandidateProduct, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.CandidateProduct
	for _, p := range f.products {
		if filter.FamilyLabel != "" && p.FamilyLabel != filter.FamilyLabel {
			continue
		}
		if len(filter.SizePatterns) > 0 {
			hit := false
			for _, pat := range filter.SizePatterns {
				if strings.Contains(strings.ToLower(p.DisplayName), strings.ToLower(pat)) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCandidateRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.CandidateProduct, error) {
	var out []*entity.CandidateProduct
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type fakeVectorRepo struct {
	hits []*entity.SemanticCandidate
	err  error
}

func (f *fakeVectorRepo) EnsureProductsCollection(context.Context) error { return nil }

func (f *fakeVectorRepo) SearchByEmbedding(_ context.Context, _ *repository.VectorSearchParams) ([]*entity.SemanticCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *fakeVectorRepo) InsertProducts(context.Context, []*repository.ProductVector) error {
	return nil
}

type fakeParser struct {
	result *queryparse.Result
	err    error
}

func (f *fakeParser) Parse(context.Context, string) (*queryparse.Result, error) {
	return f.result, f.err
}

type fakeEmbedder struct {
	err      error
	lastText string
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastText = texts[0]
	return [][]float64{{0.1, 0.2, 0.3}}, nil
}

type fakeCache struct {
	data map[string][]byte
	sets int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.sets++
	switch v := value.(type) {
	case nil:
		f.data[key] = []byte("null")
	case *entity.MaterialFamily:
		if v == nil {
			f.data[key] = []byte("null")
			return nil
		}
		f.data[key] = []byte(`{"label":"` + v.Label + `"}`)
	}
	return nil
}

type stubStrategy struct {
	result *Result
	err    error
}

func (s *stubStrategy) Execute(context.Context, entity.Query) (*Result, error) {
	return s.result, s.err
}

func cand(id, name, family string) *entity.CandidateProduct {
	return &entity.CandidateProduct{ID: id, Vendor: "acme", DisplayName: name, FamilyLabel: family}
}

func sem(id, name, family, code string, sim float64) *entity.SemanticCandidate {
	return &entity.SemanticCandidate{
		CandidateProduct: entity.CandidateProduct{ID: id, DisplayName: name, FamilyLabel: family, ClassificationCode: code},
		Similarity:       sim,
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFamilyFirst, m)

	for _, s := range []string{"family_first", "product_first", "hybrid"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}

	_, err = ParseMode("fuzzy")
	assert.Error(t, err)
}

func TestFamilyResolver(t *testing.T) {
	masonry := &entity.MaterialFamily{Label: "masonry_block", DisplayName: "Concrete Masonry Block", ClassificationCode: "04 22 00"}

	t.Run("resolves through repository and caches", func(t *testing.T) {
		repo := &fakeFamilyRepo{families: []*entity.MaterialFamily{masonry}}
		cache := newFakeCache()
		r := NewFamilyResolver(repo, cache, time.Minute)

		fam, err := r.Resolve(context.Background(), entity.Query{Keywords: []string{"masonry"}})
		require.NoError(t, err)
		require.NotNil(t, fam)
		assert.Equal(t, "masonry_block", fam.Label)
		assert.Equal(t, 1, cache.sets)

		// 第二次命中缓存，不再查库
		fam, err = r.Resolve(context.Background(), entity.Query{Keywords: []string{"masonry"}})
		require.NoError(t, err)
		require.NotNil(t, fam)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("caches negative result", func(t *testing.T) {
		repo := &fakeFamilyRepo{}
		cache := newFakeCache()
		r := NewFamilyResolver(repo, cache, time.Minute)

		fam, err := r.Resolve(context.Background(), entity.Query{Keywords: []string{"unobtainium"}})
		require.NoError(t, err)
		assert.Nil(t, fam)

		fam, err = r.Resolve(context.Background(), entity.Query{Keywords: []string{"unobtainium"}})
		require.NoError(t, err)
		assert.Nil(t, fam)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("empty keywords short-circuits", func(t *testing.T) {
		repo := &fakeFamilyRepo{err: errors.New("should not be called")}
		r := NewFamilyResolver(repo, nil, time.Minute)
		fam, err := r.Resolve(context.Background(), entity.Query{})
		require.NoError(t, err)
		assert.Nil(t, fam)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		repo := &fakeFamilyRepo{err: errors.New("db down")}
		r := NewFamilyResolver(repo, nil, time.Minute)
		_, err := r.Resolve(context.Background(), entity.Query{Keywords: []string{"rebar"}})
		assert.Error(t, err)
	})
}

func TestFamilyFirst(t *testing.T) {
	masonry := &entity.MaterialFamily{Label: "masonry_block", DisplayName: "Concrete Masonry Block", ClassificationCode: "04 22 00"}

	t.Run("unresolved family yields zero matches with warning", func(t *testing.T) {
		s := NewFamilyFirst(NewFamilyResolver(&fakeFamilyRepo{}, nil, 0), &fakeCandidateRepo{}, 20)
		res, err := s.Execute(context.Background(), entity.Query{Keywords: []string{"widget"}})
		require.NoError(t, err)
		assert.Empty(t, res.Matches)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "no material family")
	})

	t.Run("resolved family filters candidates by size variant", func(t *testing.T) {
		n := normalize.NewNormalizer()
		q := n.Normalize("8 inch masonry block")

		// 关键属性：英制与公制变体同时在场
		assert.Contains(t, q.SizeVariants, `8"`)
		assert.Contains(t, q.SizeVariants, "200mm")

		catalog := &fakeCandidateRepo{products: []*entity.CandidateProduct{
			cand("p1", `CMU Block 8" Standard`, "masonry_block"),
			cand("p2", "CMU Block 200mm Metric", "masonry_block"),
			cand("p3", `CMU Block 12" Standard`, "masonry_block"),
			cand("p4", `Rebar #4 8"`, "rebar"),
		}}
		s := NewFamilyFirst(NewFamilyResolver(&fakeFamilyRepo{families: []*entity.MaterialFamily{masonry}}, nil, 0), catalog, 20)

		res, err := s.Execute(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, "masonry_block", res.FamilyLabel)
		assert.Equal(t, "04 22 00", res.ClassificationCode)
		require.Len(t, res.Matches, 2)
		for _, m := range res.Matches {
			hit := false
			for _, v := range q.SizeVariants {
				if strings.Contains(strings.ToLower(m.DisplayName), strings.ToLower(v)) {
					hit = true
				}
			}
			assert.True(t, hit, "match %q must contain a size variant", m.DisplayName)
			assert.Zero(t, m.Similarity)
		}
		assert.Equal(t, 20, catalog.lastFilter.Limit)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		s := NewFamilyFirst(
			NewFamilyResolver(&fakeFamilyRepo{families: []*entity.MaterialFamily{masonry}}, nil, 0),
			&fakeCandidateRepo{err: errors.New("connection refused")}, 20)
		_, err := s.Execute(context.Background(), entity.Query{Keywords: []string{"masonry"}})
		assert.Error(t, err)
	})
}

func TestProductFirst(t *testing.T) {
	hits := []*entity.SemanticCandidate{
		sem("a", `PVC Pipe 2" Sch 40`, "pvc_pipe", "", 0.91),
		sem("b", `PVC Pipe 2" Sch 80`, "pvc_pipe", "22 11 16", 0.88),
		sem("c", "CPVC Pipe 2in", "cpvc_pipe", "22 11 17", 0.52),
	}

	t.Run("parser output feeds embedding text", func(t *testing.T) {
		emb := &fakeEmbedder{}
		s := NewProductFirst(
			&fakeParser{result: &queryparse.Result{Success: true, Family: "pvc_pipe", Attributes: map[string]string{"size": `2"`}, Confidence: 0.9}},
			emb, &fakeVectorRepo{hits: hits}, 0.35, 20)

		res, err := s.Execute(context.Background(), entity.Query{RawText: "2 inch pvc pipe"})
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		assert.Contains(t, emb.lastText, "pvc_pipe")
		require.Len(t, res.Matches, 3)
		assert.Equal(t, "pvc_pipe", res.FamilyLabel, "modal family across hits")
		assert.Equal(t, "22 11 16", res.ClassificationCode, "first non-empty code in similarity order")
	})

	t.Run("parse failure degrades to raw text with warning", func(t *testing.T) {
		emb := &fakeEmbedder{}
		s := NewProductFirst(&fakeParser{err: errors.New("provider timeout")}, emb, &fakeVectorRepo{hits: hits}, 0.35, 20)

		res, err := s.Execute(context.Background(), entity.Query{RawText: "2 inch pvc pipe"})
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "falling back to raw text")
		assert.Equal(t, "2 inch pvc pipe", emb.lastText)
		assert.Len(t, res.Matches, 3)
	})

	t.Run("embedding failure returns typed error", func(t *testing.T) {
		s := NewProductFirst(nil, &fakeEmbedder{err: errors.New("503")}, &fakeVectorRepo{}, 0.35, 20)
		_, err := s.Execute(context.Background(), entity.Query{RawText: "rebar"})
		require.Error(t, err)
		appErr := pkgErrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgErrors.CodeEmbeddingFailed, appErr.Code)
	})

	t.Run("vector store error propagates", func(t *testing.T) {
		s := NewProductFirst(nil, &fakeEmbedder{}, &fakeVectorRepo{err: errors.New("milvus unavailable")}, 0.35, 20)
		_, err := s.Execute(context.Background(), entity.Query{RawText: "rebar"})
		assert.Error(t, err)
	})
}

func TestHybrid(t *testing.T) {
	lexHits := []entity.SemanticCandidate{
		{CandidateProduct: entity.CandidateProduct{ID: "a", DisplayName: "A"}},
		{CandidateProduct: entity.CandidateProduct{ID: "b", DisplayName: "B"}},
	}
	semHits := []entity.SemanticCandidate{
		{CandidateProduct: entity.CandidateProduct{ID: "b", DisplayName: "B"}, Similarity: 0.9},
		{CandidateProduct: entity.CandidateProduct{ID: "c", DisplayName: "C"}, Similarity: 0.7},
	}

	t.Run("fuses both branches", func(t *testing.T) {
		s := NewHybrid(
			&stubStrategy{result: &Result{Matches: lexHits, FamilyLabel: "fam", ClassificationCode: "04 22 00"}},
			&stubStrategy{result: &Result{Matches: semHits}},
			nil)
		res, err := s.Execute(context.Background(), entity.Query{})
		require.NoError(t, err)
		require.Len(t, res.Matches, 3)
		// b 同时出现在两路，融合后居首
		assert.Equal(t, "b", res.Matches[0].ID)
		assert.Equal(t, "fam", res.FamilyLabel)
		assert.Equal(t, "04 22 00", res.ClassificationCode)
		require.Len(t, res.Fused, 3)
		assert.Greater(t, res.Fused[0].FusionScore, res.Fused[1].FusionScore)
	})

	t.Run("semantic-only results carry lexical empty warning", func(t *testing.T) {
		s := NewHybrid(
			&stubStrategy{result: &Result{}},
			&stubStrategy{result: &Result{Matches: semHits}},
			nil)
		res, err := s.Execute(context.Background(), entity.Query{})
		require.NoError(t, err)
		assert.Len(t, res.Matches, 2)
		require.NotEmpty(t, res.Warnings)
		assert.Contains(t, res.Warnings[len(res.Warnings)-1], "lexical branch found no candidates")
	})

	t.Run("single branch failure degrades with warning", func(t *testing.T) {
		s := NewHybrid(
			&stubStrategy{err: errors.New("db down")},
			&stubStrategy{result: &Result{Matches: semHits, FamilyLabel: "pvc_pipe"}},
			nil)
		res, err := s.Execute(context.Background(), entity.Query{})
		require.NoError(t, err)
		assert.Len(t, res.Matches, 2)
		require.NotEmpty(t, res.Warnings)
		assert.Contains(t, res.Warnings[0], "lexical branch failed")
		assert.Equal(t, "pvc_pipe", res.FamilyLabel)
	})

	t.Run("both branches failing is an error", func(t *testing.T) {
		s := NewHybrid(&stubStrategy{err: errors.New("x")}, &stubStrategy{err: errors.New("y")}, nil)
		_, err := s.Execute(context.Background(), entity.Query{})
		require.Error(t, err)
		appErr := pkgErrors.AsAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgErrors.CodeAllBranchesFailed, appErr.Code)
	})

	t.Run("cancellation surfaces context error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := NewHybrid(&stubStrategy{result: &Result{}}, &stubStrategy{result: &Result{}}, nil)
		_, err := s.Execute(ctx, entity.Query{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
