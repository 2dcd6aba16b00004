// Package research answers questions about a set of news articles: ingest
// fetches and embeds them, ask retrieves the closest chunks and lets the model
// answer from that context only.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/metrics"
)

// Defaults for chunking and retrieval.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 2
)

// stateKey names the persisted description of the active index.
const stateKey = "research:active"

// Payload fields stored with every chunk.
const (
	fieldContent = "content"
	fieldSource  = "source"
)

// separators are tried in order when splitting article text.
var separators = []string{"\n\n", "\n", ".", ","}

const answerTemplate = `You are a helpful assistant. Answer the question based ONLY on the following context.
If you don't know the answer, just say "I don't know".

Context:
%s

Question: %s`

// Config tunes chunking and retrieval. Zero values use the defaults.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// IngestResult summarizes a rebuilt index.
type IngestResult struct {
	IndexID   string
	Documents int
	Chunks    int
	Failed    []string
}

// Answer is a model answer with the URLs of the chunks it was given.
type Answer struct {
	Text    string
	Sources []string
}

// IndexInfo describes the active index.
type IndexInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Sources   []string  `json:"sources"`
	Chunks    int       `json:"chunks"`
}

type chunk struct {
	source string
	text   string
}

// Service owns the active index.
type Service struct {
	fetcher   Fetcher
	embedder  domain.Embedder
	completer domain.Completer
	index     VectorIndex
	state     StateStore
	cfg       Config
	current   atomic.Pointer[IndexInfo]
	logger    *zap.Logger
}

// New creates a research service with no active index.
func New(
	fetcher Fetcher, embedder domain.Embedder, completer domain.Completer,
	index VectorIndex, cfg Config, logger *zap.Logger,
) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = min(DefaultChunkOverlap, cfg.ChunkSize/5)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &Service{
		fetcher:   fetcher,
		embedder:  embedder,
		completer: completer,
		index:     index,
		cfg:       cfg,
		logger:    logger,
	}
}

// WithStateStore persists the active index description so Restore can pick it
// up after a restart.
func (s *Service) WithStateStore(state StateStore) *Service {
	s.state = state
	return s
}

// Restore reactivates the index saved by the last successful ingest.
func (s *Service) Restore(ctx context.Context) error {
	if s.state == nil {
		return nil
	}
	data, ok, err := s.state.Load(ctx, stateKey)
	if err != nil || !ok {
		return err
	}

	var info IndexInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("decode research state: %w", err)
	}
	if info.ID == "" {
		return nil
	}
	s.current.Store(&info)

	s.logger.Info("Research index restored",
		zap.String("index_id", info.ID),
		zap.Int("documents", len(info.Sources)),
		zap.Int("chunks", info.Chunks),
	)
	return nil
}

// Ingest fetches every non-blank URL, splits and embeds the text and replaces
// the active index. URLs that fail to load are reported in Failed; if nothing
// loads the previous index stays active.
func (s *Service) Ingest(ctx context.Context, urls []string) (IngestResult, error) {
	var targets []string
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" && !slices.Contains(targets, u) {
			targets = append(targets, u)
		}
	}
	if len(targets) == 0 {
		return IngestResult{}, fmt.Errorf("%w: at least one url is required", domain.ErrInvalidInput)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.cfg.ChunkSize),
		textsplitter.WithChunkOverlap(s.cfg.ChunkOverlap),
		textsplitter.WithSeparators(separators),
	)

	var (
		chunks  []chunk
		sources []string
		failed  []string
	)
	for _, u := range targets {
		text, err := s.fetcher.FetchText(ctx, u)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("no readable text")
		}
		if err != nil {
			s.logger.Warn("Skipping article", zap.String("url", u), zap.Error(err))
			failed = append(failed, u)
			continue
		}

		parts, err := splitter.SplitText(text)
		if err != nil {
			return IngestResult{}, fmt.Errorf("split %s: %w", u, err)
		}
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				chunks = append(chunks, chunk{source: u, text: p})
			}
		}
		sources = append(sources, u)
	}

	if len(chunks) == 0 {
		return IngestResult{Failed: failed}, fmt.Errorf("%w: none of the urls produced any text", domain.ErrInvalidInput)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].text
	}
	emb, err := domain.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return IngestResult{}, fmt.Errorf("embed chunks: %w", err)
	}
	if len(emb.Embeddings) != len(chunks) {
		return IngestResult{}, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrService, len(chunks), len(emb.Embeddings))
	}

	docs := make([]domain.VectorDoc, len(chunks))
	for i := range chunks {
		if len(emb.Embeddings[i]) == 0 || len(emb.Embeddings[i]) != len(emb.Embeddings[0]) {
			return IngestResult{}, fmt.Errorf("%w: inconsistent embedding dimensions", domain.ErrService)
		}
		docs[i] = domain.VectorDoc{
			ID:     strconv.Itoa(i),
			Fields: map[string]string{fieldContent: chunks[i].text, fieldSource: chunks[i].source},
			Vector: emb.Embeddings[i],
		}
	}

	info := &IndexInfo{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Sources:   sources,
		Chunks:    len(chunks),
	}
	if err := s.store(ctx, info, docs); err != nil {
		return IngestResult{}, err
	}

	if prev := s.current.Swap(info); prev != nil {
		if err := s.index.Drop(ctx, indexName(prev.ID)); err != nil {
			s.logger.Warn("Failed to drop previous research index",
				zap.String("index_id", prev.ID), zap.Error(err))
		}
	}

	s.logger.Info("Research index rebuilt",
		zap.String("index_id", info.ID),
		zap.Int("documents", len(sources)),
		zap.Int("chunks", len(chunks)),
		zap.Int("failed", len(failed)),
	)

	return IngestResult{IndexID: info.ID, Documents: len(sources), Chunks: len(chunks), Failed: failed}, nil
}

// store writes a new index and records it as active. A half-written index is dropped.
func (s *Service) store(ctx context.Context, info *IndexInfo, docs []domain.VectorDoc) error {
	name := indexName(info.ID)
	err := s.index.Create(ctx, name, len(docs[0].Vector))
	if err == nil {
		err = s.index.Put(ctx, name, docs)
	}
	if err == nil && s.state != nil {
		var data []byte
		if data, err = json.Marshal(info); err == nil {
			err = s.state.Save(ctx, stateKey, data)
		}
	}
	if err != nil {
		if dropErr := s.index.Drop(ctx, name); dropErr != nil {
			s.logger.Warn("Failed to drop incomplete research index",
				zap.String("index_id", info.ID), zap.Error(dropErr))
		}
		return fmt.Errorf("store research index: %w", err)
	}
	return nil
}

// Ask answers a question from the active index.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return Answer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	info := s.current.Load()
	if info == nil || info.Chunks == 0 {
		return Answer{}, domain.ErrIndexEmpty
	}

	qe, err := s.embedder.Embed(ctx, q)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.index.Search(ctx, indexName(info.ID), qe.Embedding, s.cfg.TopK, fieldContent, fieldSource)
	if errors.Is(err, domain.ErrNotFound) {
		return Answer{}, domain.ErrIndexEmpty
	}
	if err != nil {
		return Answer{}, fmt.Errorf("search chunks: %w", err)
	}

	parts := make([]string, 0, len(hits))
	var sources []string
	for _, h := range hits {
		parts = append(parts, h.Fields[fieldContent])
		if src := h.Fields[fieldSource]; !slices.Contains(sources, src) {
			sources = append(sources, src)
		}
	}

	res, err := s.completer.Complete(ctx, fmt.Sprintf(answerTemplate, strings.Join(parts, "\n\n"), q))
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("research", "error").Inc()
		return Answer{}, fmt.Errorf("answer question: %w", err)
	}
	metrics.GenerationsTotal.WithLabelValues("research", "ok").Inc()

	return Answer{Text: res.Text, Sources: sources}, nil
}

// Info describes the active index; ok is false before the first ingest.
func (s *Service) Info() (IndexInfo, bool) {
	info := s.current.Load()
	if info == nil {
		return IndexInfo{}, false
	}
	out := *info
	out.Sources = slices.Clone(info.Sources)
	return out, true
}

func indexName(id string) string { return "research:" + id }
