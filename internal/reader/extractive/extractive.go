// Package extractive generates answers without a model: it ranks the
// sentences of the retrieved contexts by stopword-filtered token frequency
// and returns the best ones in their original order.
package extractive

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// NoContextAnswer is returned when retrieval produced no passages.
const NoContextAnswer = "No relevant context was found for this question."

// Generator is a frequency-based extractive answerer.
type Generator struct {
	maxSentences    int
	tokenPattern    *regexp.Regexp
	sentencePattern *regexp.Regexp
	stopwords       map[string]struct{}
}

// New creates an extractive generator that keeps at most maxSentences
// sentences (5 if non-positive).
func New(maxSentences int) *Generator {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	return &Generator{
		maxSentences:    maxSentences,
		tokenPattern:    regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentencePattern: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:       defaultStopwords(),
	}
}

// Name returns the identifier of this generator implementation.
func (g *Generator) Name() string { return "extractive" }

// Generate answers by extracting the highest-frequency sentences from the
// contexts. An empty context set yields NoContextAnswer.
func (g *Generator) Generate(ctx context.Context, question string, contexts []string) (string, error) {
	text := strings.TrimSpace(strings.Join(contexts, "\n\n"))
	if text == "" {
		return NoContextAnswer, nil
	}
	sentences := g.sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		return text, nil
	}
	// Token frequencies over all contexts, question tokens counted double
	// so sentences touching the question rank higher.
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range g.tokens(sent) {
			freq[tok]++
		}
	}
	for _, tok := range g.tokens(question) {
		if _, ok := freq[tok]; ok {
			freq[tok] *= 2
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		sscore := 0.0
		toks := g.tokens(sent)
		for _, tok := range toks {
			sscore += freq[tok]
		}
		// Normalize by sentence length to avoid bias toward long sentences.
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	keep := g.maxSentences
	if keep > len(scores) {
		keep = len(scores)
	}
	selected := make([]int, keep)
	for i := 0; i < keep; i++ {
		selected[i] = scores[i].idx
	}
	// Keep original order among selected sentences.
	sort.Ints(selected)
	var out []string
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func (g *Generator) tokens(text string) []string {
	lower := strings.ToLower(text)
	raw := g.tokenPattern.FindAllString(lower, -1)
	out := raw[:0]
	for _, t := range raw {
		if _, ok := g.stopwords[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
