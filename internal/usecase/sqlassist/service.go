// Package sqlassist turns a natural-language question about the store's
// inventory into SQL, runs it and phrases the result as an answer. The two
// closest demonstrations are picked from the example set by embedding similarity.
package sqlassist

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fewshot/internal/domain"
	"github.com/kailas-cloud/fewshot/internal/metrics"
)

// Defaults for example selection.
const (
	DefaultTopK    = 2
	DefaultDialect = "MySQL"
)

const indexName = "sql_examples"

// Payload fields stored with every example.
const (
	fieldQuestion  = "question"
	fieldSQLQuery  = "sql_query"
	fieldSQLResult = "sql_result"
	fieldAnswer    = "answer"
)

const prefixTemplate = `You are a %[1]s expert. Given an input question, create a syntactically correct %[1]s query to run.
IMPORTANT: Return ONLY the raw SQL code in the SQLQuery section. Do NOT use markdown.
IMPORTANT: In the Answer section, do NOT repeat the SQL code. Only output the final natural language sentence.

Format:
Question: Question here
SQLQuery: Raw SQL query without formatting
SQLResult: Result of the SQLQuery
Answer: Final natural language response`

// Config tunes example selection. Zero values use the defaults.
type Config struct {
	TopK    int
	Dialect string
}

// Result is the generated query and, when a database is attached, its result
// and the phrased answer.
type Result struct {
	Question string
	SQL      string
	Executed bool
	Rows     string
	Answer   string
	Examples []string
}

// Service answers questions with few-shot SQL generation.
type Service struct {
	embedder  domain.Embedder
	completer domain.Completer
	index     VectorIndex
	db        Database
	examples  []Example
	cfg       Config
	logger    *zap.Logger

	mu    sync.Mutex
	ready bool
}

// New creates a SQL assistant. db may be nil, in which case Ask only generates SQL.
func New(
	embedder domain.Embedder, completer domain.Completer, index VectorIndex, db Database,
	examples []Example, cfg Config, logger *zap.Logger,
) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Dialect == "" {
		cfg.Dialect = DefaultDialect
	}
	return &Service{
		embedder:  embedder,
		completer: completer,
		index:     index,
		db:        db,
		examples:  examples,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ask generates a query for question; with a database attached it runs the
// query and asks the model to phrase the rows as an answer.
func (s *Service) Ask(ctx context.Context, question string) (Result, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return Result{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	examples, err := s.selectExamples(ctx, q)
	if err != nil {
		return Result{}, err
	}

	var tableInfo string
	if s.db != nil {
		if tableInfo, err = s.db.TableInfo(ctx); err != nil {
			return Result{}, fmt.Errorf("describe tables: %w", err)
		}
	}

	prompt := s.buildPrompt(examples, tableInfo, q)
	gen, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("sql", "error").Inc()
		return Result{}, fmt.Errorf("generate sql: %w", err)
	}
	query := cleanSQL(gen.Text)
	if query == "" {
		metrics.GenerationsTotal.WithLabelValues("sql", "error").Inc()
		return Result{}, fmt.Errorf("%w: model returned no sql", domain.ErrService)
	}

	res := Result{Question: q, SQL: query}
	for _, e := range examples {
		res.Examples = append(res.Examples, e.Question)
	}
	if s.db == nil {
		metrics.GenerationsTotal.WithLabelValues("sql", "ok").Inc()
		return res, nil
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("sql", "error").Inc()
		return Result{}, fmt.Errorf("run generated sql: %w", err)
	}
	res.Executed = true
	res.Rows = rows

	ans, err := s.completer.Complete(ctx, prompt+" "+query+"\nSQLResult: "+rows+"\nAnswer:")
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("sql", "error").Inc()
		return Result{}, fmt.Errorf("phrase answer: %w", err)
	}
	metrics.GenerationsTotal.WithLabelValues("sql", "ok").Inc()

	res.Answer = cleanAnswer(ans.Text)
	return res, nil
}

// selectExamples returns the TopK examples closest to question, best first.
func (s *Service) selectExamples(ctx context.Context, question string) ([]Example, error) {
	if len(s.examples) == 0 {
		return nil, nil
	}
	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}

	qe, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	hits, err := s.index.Search(ctx, indexName, qe.Embedding, s.cfg.TopK,
		fieldQuestion, fieldSQLQuery, fieldSQLResult, fieldAnswer)
	if err != nil {
		return nil, fmt.Errorf("select examples: %w", err)
	}

	out := make([]Example, 0, len(hits))
	for _, h := range hits {
		out = append(out, Example{
			Question:  h.Fields[fieldQuestion],
			SQLQuery:  h.Fields[fieldSQLQuery],
			SQLResult: h.Fields[fieldSQLResult],
			Answer:    h.Fields[fieldAnswer],
		})
	}
	return out, nil
}

// ensureIndex embeds the examples into a fresh index once per process.
func (s *Service) ensureIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	texts := make([]string, len(s.examples))
	for i := range s.examples {
		texts[i] = s.examples[i].text()
	}
	emb, err := domain.EmbedAll(ctx, s.embedder, texts)
	if err != nil {
		return fmt.Errorf("embed examples: %w", err)
	}
	if len(emb.Embeddings) != len(s.examples) {
		return fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrService, len(s.examples), len(emb.Embeddings))
	}

	docs := make([]domain.VectorDoc, len(s.examples))
	for i, e := range s.examples {
		if len(emb.Embeddings[i]) == 0 || len(emb.Embeddings[i]) != len(emb.Embeddings[0]) {
			return fmt.Errorf("%w: inconsistent embedding dimensions", domain.ErrService)
		}
		docs[i] = domain.VectorDoc{
			ID: strconv.Itoa(i),
			Fields: map[string]string{
				fieldQuestion:  e.Question,
				fieldSQLQuery:  e.SQLQuery,
				fieldSQLResult: e.SQLResult,
				fieldAnswer:    e.Answer,
			},
			Vector: emb.Embeddings[i],
		}
	}

	// The embedding model may have changed since the index was last written.
	if err := s.index.Drop(ctx, indexName); err != nil {
		return fmt.Errorf("reset example index: %w", err)
	}
	if err := s.index.Create(ctx, indexName, len(docs[0].Vector)); err != nil {
		return fmt.Errorf("create example index: %w", err)
	}
	if err := s.index.Put(ctx, indexName, docs); err != nil {
		return fmt.Errorf("store examples: %w", err)
	}

	s.ready = true
	s.logger.Info("SQL examples indexed", zap.Int("examples", len(docs)), zap.Int("dim", len(docs[0].Vector)))
	return nil
}

func (s *Service) buildPrompt(examples []Example, tableInfo, question string) string {
	parts := make([]string, 0, len(examples)+2)
	parts = append(parts, fmt.Sprintf(prefixTemplate, s.cfg.Dialect))
	for _, e := range examples {
		parts = append(parts, e.block())
	}
	parts = append(parts, "Only use these tables: "+tableInfo+"\nQuestion: "+question+"\nSQLQuery:")
	return strings.Join(parts, "\n\n")
}

// cleanSQL strips markdown fences and anything the model wrote past the query.
func cleanSQL(text string) string {
	t := strings.TrimSpace(text)
	if i := strings.LastIndex(t, "SQLQuery:"); i >= 0 {
		t = t[i+len("SQLQuery:"):]
	}
	if i := strings.Index(t, "SQLResult:"); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		t = strings.TrimPrefix(t, "sql")
		t = strings.TrimPrefix(t, "SQL")
		t, _, _ = strings.Cut(t, "```")
	}
	return strings.TrimSpace(t)
}

// cleanAnswer keeps the text after the last "Answer:" label, up to any
// follow-up question the model invented.
func cleanAnswer(text string) string {
	t := text
	if i := strings.LastIndex(t, "Answer:"); i >= 0 {
		t = t[i+len("Answer:"):]
	}
	t, _, _ = strings.Cut(t, "\nQuestion:")
	return strings.TrimSpace(t)
}
