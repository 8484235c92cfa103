// Package query implements multi-domain retrieval and answer generation.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lumenio-ai/lumen/internal/chat"
	"github.com/lumenio-ai/lumen/internal/domain"
	"github.com/lumenio-ai/lumen/internal/embedding"
	"github.com/lumenio-ai/lumen/internal/telemetry"
	"github.com/lumenio-ai/lumen/internal/vectorstore"
)

// contextCutoff is the number of top-ranked candidates assembled into the
// prompt context, independent of result count and domain count.
const contextCutoff = 3

const systemPromptTemplate = `You are a knowledgeable assistant. Answer the question using the provided context. If the context does not contain the answer, say so instead of guessing.

Context:
%s`

// Catalog is the read side of the domain manager the engine queries
// against. *manager.Manager satisfies it.
type Catalog interface {
	GetDomains() []*domain.Domain
	VectorStores() map[string]vectorstore.VectorStore
}

// Engine answers questions over the configured domains: fan-out retrieval,
// optional re-ranking, prompt assembly and generation.
//
// The engine never mutates the conversation; the request boundary appends
// the question and the accumulated answer after the call completes.
type Engine struct {
	catalog   Catalog
	embedder  embedding.Model
	model     chat.Model
	optimizer Optimizer
	reranker  ReRanker
	nResults  int
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithReRanker enables candidate re-ranking.
func WithReRanker(r ReRanker) Option {
	return func(e *Engine) { e.reranker = r }
}

// WithOptimizer enables query rewriting before embedding.
func WithOptimizer(o Optimizer) Option {
	return func(e *Engine) { e.optimizer = o }
}

// NewEngine validates nResults at construction time.
func NewEngine(catalog Catalog, embedder embedding.Model, model chat.Model, nResults int, opts ...Option) (*Engine, error) {
	if nResults <= 0 {
		return nil, domain.NewValidationError("n_results must be positive, got %d", nResults)
	}
	e := &Engine{
		catalog:  catalog,
		embedder: embedder,
		model:    model,
		nResults: nResults,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// resolveDomains expands an empty selection to all configured domains and
// validates an explicit one. Every unknown name is collected so the error
// reports the full offending set; validation happens before any I/O.
func (e *Engine) resolveDomains(domainNames []string) ([]string, error) {
	configured := e.catalog.GetDomains()

	if len(domainNames) == 0 {
		names := make([]string, 0, len(configured))
		for _, d := range configured {
			names = append(names, d.Name)
		}
		return names, nil
	}

	known := make(map[string]bool, len(configured))
	for _, d := range configured {
		known[d.Name] = true
	}

	var unknown []string
	for _, name := range domainNames {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, domain.NewValidationError("unknown domain names: %s", strings.Join(unknown, ", "))
	}
	return domainNames, nil
}

// Retrieve runs the fan-out retrieval phase and returns the ordered
// candidate list. Without a reranker the order is domain iteration order,
// then per-domain rank; with one, the reranker's order.
func (e *Engine) Retrieve(ctx context.Context, question string, domainNames []string) ([]Candidate, error) {
	names, err := e.resolveDomains(domainNames)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "query.retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	retrievalQuery := question
	if e.optimizer != nil {
		retrievalQuery = e.optimizer.Optimize(question)
	}

	stores := e.catalog.VectorStores()

	var candidates []Candidate
	for _, name := range names {
		vs, ok := stores[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoVectorStore, name)
		}

		// The question is embedded once per domain; there is no
		// cross-domain embedding cache.
		queryEmbedding, err := e.embedder.GenerateEmbedding(ctx, retrievalQuery)
		if err != nil {
			return nil, domain.NewUpstreamError("query embedding", err)
		}

		results, err := vs.Query(ctx, queryEmbedding, e.nResults)
		if err != nil {
			return nil, domain.NewUpstreamError("vector store query", err)
		}

		for _, r := range results {
			candidates = append(candidates, Candidate{
				Domain:   name,
				ID:       r.ID,
				Content:  r.Content,
				Score:    r.Score,
				Metadata: r.Metadata,
			})
		}
	}

	if e.reranker != nil {
		candidates = e.reranker.ReRank(candidates, question)
	}
	return candidates, nil
}

// AskQuestion answers the question over the selected domains and returns
// the full text plus the sources behind the assembled context. An empty
// candidate set is not an error; generation proceeds with empty context.
func (e *Engine) AskQuestion(ctx context.Context, question string, domainNames []string, conversation *domain.Conversation) (string, []chat.Source, error) {
	candidates, err := e.Retrieve(ctx, question, domainNames)
	if err != nil {
		return "", nil, err
	}

	top := topCandidates(candidates)
	answer, err := e.model.Chat(ctx, chat.Request{
		SystemPrompt: buildSystemPrompt(top),
		Query:        question,
		Conversation: conversation,
	})
	if err != nil {
		return "", nil, err
	}
	return answer, sourcesOf(top), nil
}

// AskQuestionStream is the streaming variant: fragments arrive in
// generation order and the terminal Done event carries the sources.
func (e *Engine) AskQuestionStream(ctx context.Context, question string, domainNames []string, conversation *domain.Conversation) (<-chan chat.StreamEvent, error) {
	candidates, err := e.Retrieve(ctx, question, domainNames)
	if err != nil {
		return nil, err
	}

	top := topCandidates(candidates)
	upstream, err := e.model.ChatStream(ctx, chat.Request{
		SystemPrompt: buildSystemPrompt(top),
		Query:        question,
		Conversation: conversation,
	})
	if err != nil {
		return nil, err
	}

	sources := sourcesOf(top)
	out := make(chan chat.StreamEvent)
	go func() {
		defer close(out)
		for ev := range upstream {
			if ev.Done {
				ev.Sources = sources
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Done {
				return
			}
		}
	}()
	return out, nil
}

// SendInitialMessage generates an opening turn with no retrieval phase.
func (e *Engine) SendInitialMessage(ctx context.Context, modelName, prompt string) (string, error) {
	return e.model.Chat(ctx, chat.Request{
		Model: modelName,
		Query: prompt,
	})
}

// SendInitialMessageStream streams the opening turn.
func (e *Engine) SendInitialMessageStream(ctx context.Context, modelName, prompt string) (<-chan chat.StreamEvent, error) {
	return e.model.ChatStream(ctx, chat.Request{
		Model: modelName,
		Query: prompt,
	})
}

func topCandidates(candidates []Candidate) []Candidate {
	if len(candidates) > contextCutoff {
		return candidates[:contextCutoff]
	}
	return candidates
}

func buildSystemPrompt(top []Candidate) string {
	parts := make([]string, len(top))
	for i, c := range top {
		parts[i] = c.Content
	}
	return fmt.Sprintf(systemPromptTemplate, strings.Join(parts, "\n\n"))
}

func sourcesOf(top []Candidate) []chat.Source {
	sources := make([]chat.Source, 0, len(top))
	for _, c := range top {
		s := chat.Source{
			Domain:  c.Domain,
			ChunkID: c.ID,
			Score:   c.Score,
		}
		if id, ok := c.Metadata[domain.MetaDocumentID].(string); ok {
			s.DocumentID = id
		}
		if name, ok := c.Metadata[domain.MetaDocumentName].(string); ok {
			s.DocumentName = name
		}
		sources = append(sources, s)
	}
	return sources
}
