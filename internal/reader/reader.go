// Package reader provides the answer generator implementations.
package reader

import (
	"context"
	"strings"
)

// Generator produces an answer to a question conditioned on ordered
// contexts, highest-salience first. An empty context set is valid input.
type Generator interface {
	Name() string
	Generate(ctx context.Context, question string, contexts []string) (string, error)
}

// BuildPrompt assembles the grounded-answer prompt. Contexts appear in
// retrieval order so earlier (more similar) passages carry more salience.
func BuildPrompt(question string, contexts []string) string {
	ctx := strings.Join(contexts, "\n\n---\n")
	return "Context:\n" + ctx + "\n\nQuestion: " + question + "\nAnswer succinctly with references to the context."
}
