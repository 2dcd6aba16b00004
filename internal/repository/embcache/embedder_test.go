package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
)

func TestEmbed_CacheMissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner, 0)
	ctx := context.Background()

	first, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10 on miss, got %d", first.TotalTokens)
	}
	if ms.setCall != 1 {
		t.Fatalf("expected one cache put, got %d", ms.setCall)
	}

	second, err := ce.Embed(ctx, "test text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalTokens != 0 {
		t.Errorf("expected TotalTokens=0 on hit, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 || second.Embedding[2] != 0.3 {
		t.Errorf("unexpected cached vector: %v", second.Embedding)
	}
}

func TestEmbed_KeyFormat(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, 0)

	if _, err := ce.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prefix := "fewshot:emb_cache:text-embedding-3-small:0:"
	for k := range ms.data {
		if !strings.HasPrefix(k, prefix) || len(k) != len(prefix)+64 {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestEmbed_ModelChangeMissesCache(t *testing.T) {
	ms := newMemKVStore()
	ctx := context.Background()

	small := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2, 3}, TotalTokens: 1}}
	if _, err := New(small, ms, "text-embedding-3-small", 3, 0, nil, zap.NewNop()).Embed(ctx, "hello"); err != nil {
		t.Fatal(err)
	}

	large := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{9, 9}, TotalTokens: 1}}
	for _, ce := range []*CachedEmbedder{
		New(large, ms, "text-embedding-3-large", 3, 0, nil, zap.NewNop()),
		New(large, ms, "text-embedding-3-small", 2, 0, nil, zap.NewNop()),
	} {
		res, err := ce.Embed(ctx, "hello")
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Embedding) != 2 || res.TotalTokens != 1 {
			t.Errorf("expected a fresh embedding from the new model, got %+v", res)
		}
	}
	if len(ms.data) != 3 {
		t.Errorf("expected one entry per model and dimensions, got %d", len(ms.data))
	}
}

func TestEmbed_UsesTTL(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner, time.Hour)

	if _, err := ce.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.ttls) != 1 {
		t.Fatalf("expected SetWithTTL to be used, got %v", ms.ttls)
	}
	for _, ttl := range ms.ttls {
		if ttl != time.Hour {
			t.Errorf("expected ttl 1h, got %v", ttl)
		}
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, ms := newTestCachedEmbedder(t, inner, 0)

	_, err := ce.Embed(context.Background(), "test")
	if err == nil {
		t.Fatal("expected error")
	}
	if ms.setCall != 0 {
		t.Error("failed embeddings must not be cached")
	}
}

func TestEmbed_StoreErrorsDegradeToMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}, TotalTokens: 4}}
	ce, ms := newTestCachedEmbedder(t, inner, 0)
	ms.getErr = errors.New("connection reset")
	ms.setErr = errors.New("connection reset")

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("store failures must not fail the request: %v", err)
	}
	if res.TotalTokens != 4 {
		t.Errorf("expected inner result, got %+v", res)
	}
}

func TestEmbed_CorruptCacheEntry(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{7}, TotalTokens: 1}}
	ce, ms := newTestCachedEmbedder(t, inner, 0)
	ms.data[ce.cacheKey("x")] = []byte{1, 2, 3}

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embedding[0] != 7 {
		t.Errorf("expected fresh vector after corrupt entry, got %v", res.Embedding)
	}
}

func TestBatchEmbed_OnlyMissesReachInner(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, 0)
	ms.data[ce.cacheKey("bb")] = vectorToCacheBytes([]float32{42})

	res, err := ce.BatchEmbed(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 1 {
		t.Fatalf("expected one inner batch call, got %d", inner.batchCalls)
	}
	if got := inner.batchSeen[0]; len(got) != 2 || got[0] != "a" || got[1] != "ccc" {
		t.Errorf("expected only misses, got %v", got)
	}
	want := []float32{1, 42, 3}
	for i, v := range want {
		if res.Embeddings[i][0] != v {
			t.Errorf("embedding[%d] = %v, want %v", i, res.Embeddings[i][0], v)
		}
	}
	if res.TotalTokens != 6 {
		t.Errorf("expected tokens for misses only, got %d", res.TotalTokens)
	}
}

func TestBatchEmbed_AllHits(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, 0)
	ms.data[ce.cacheKey("a")] = vectorToCacheBytes([]float32{1})

	res, err := ce.BatchEmbed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 0 {
		t.Errorf("inner must not be called when everything is cached")
	}
	if res.TotalTokens != 0 || len(res.Embeddings) != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: domain.ErrService}
	ce, _ := newTestCachedEmbedder(t, inner, 0)

	_, err := ce.BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}

func TestCacheCounter(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce := New(inner, newMemKVStore(), "m", 0, 0, counter, zap.NewNop())

	ctx := context.Background()
	_, _ = ce.Embed(ctx, "q")
	_, _ = ce.Embed(ctx, "q")

	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("expected 1 miss, got %v", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("expected 1 hit, got %v", v)
	}
}

func TestBytesToVector_Invalid(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated data")
	}
}
