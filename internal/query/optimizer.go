package query

import "strings"

// Optimizer rewrites the raw question before embedding. The rewritten form
// is used for retrieval only; generation and re-ranking see the original.
type Optimizer interface {
	Optimize(query string) string
}

// WhitespaceOptimizer collapses runs of whitespace to single spaces and
// trims the ends. It is the reference rewrite; richer optimizers plug in
// behind the same interface.
type WhitespaceOptimizer struct{}

func NewWhitespaceOptimizer() *WhitespaceOptimizer {
	return &WhitespaceOptimizer{}
}

func (o *WhitespaceOptimizer) Optimize(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
