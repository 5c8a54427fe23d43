// Package answer assembles retrieved units into a prompt and delegates to
// the text-completion service.
package answer

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/domain"
)

// promptTemplate instructs the model to answer from context, to attempt
// approximate row matching for table lookups, and to flag inference when
// falling back to general knowledge.
const promptTemplate = `You are a helpful assistant. Use the provided context from a PDF (and images/tables) to answer the user's question.
If the question asks for an exact table cell but the user doesn't know headers, try to find relevant rows by approximate values or synonyms.
If the context isn't sufficient, use your general knowledge but say when you are inferring.

Context:
%s

Question: %s
Answer:`

// Retriever is the subset of the retrieval stage the composer needs.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]domain.SearchResult, error)
}

// Composer turns a question into a final answer via retrieval and one
// completion call. The completion output is returned verbatim.
type Composer struct {
	retriever Retriever
	completer domain.Completer
}

// NewComposer wires the answer stage.
func NewComposer(retriever Retriever, completer domain.Completer) *Composer {
	return &Composer{retriever: retriever, completer: completer}
}

// Answer retrieves context for the question, fills the prompt template and
// returns the completion text along with the units it was grounded on.
func (c *Composer) Answer(ctx context.Context, question string) (string, []domain.SearchResult, error) {
	results, err := c.retriever.Retrieve(ctx, question, 0)
	if err != nil {
		return "", nil, err
	}
	prompt := fmt.Sprintf(promptTemplate, BuildContext(results), question)
	out, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("complete: %w", err)
	}
	return out, results, nil
}

// BuildContext concatenates one tagged line plus a blank line per result,
// preserving the retriever's return order.
func BuildContext(results []domain.SearchResult) string {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString("[source:" + r.Unit.Meta.String() + " ] " + r.Unit.Text + "\n\n")
	}
	return sb.String()
}
