package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"ragh/internal/domain"
)

// ParagraphChunker splits document text into passages by greedily packing
// paragraphs up to a character budget, seeding each next passage with the
// tail of the previous one. A single paragraph larger than the budget is
// hard-split into fixed-size windows.
type ParagraphChunker struct {
	maxChars     int
	overlapChars int
	separator    *regexp.Regexp
}

// NewParagraphChunker creates a chunker with the given character budget and
// overlap. The overlap must be positive and strictly below the budget.
func NewParagraphChunker(maxChars, overlapChars int) (*ParagraphChunker, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max_chars must be positive, got %d", domain.ErrInvalidArgument, maxChars)
	}
	if overlapChars <= 0 || overlapChars >= maxChars {
		return nil, fmt.Errorf("%w: overlap_chars must satisfy 0 < overlap < max_chars, got overlap=%d max=%d",
			domain.ErrInvalidArgument, overlapChars, maxChars)
	}
	return &ParagraphChunker{
		maxChars:     maxChars,
		overlapChars: overlapChars,
		separator:    regexp.MustCompile(`\n{2,}`),
	}, nil
}

// Chunk splits text into ordered passages with character offsets. Empty
// input yields zero passages. Offsets are monotonically non-decreasing;
// hard-split windows slice the original text exactly, while paragraph-packed
// passages carry normalized separators and overlap-seeded prefixes.
func (c *ParagraphChunker) Chunk(text string) ([]domain.Passage, error) {
	var paragraphs []string
	for _, p := range c.separator.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var passages []domain.Passage
	current := ""
	startIdx := 0
	cursor := 0
	for _, p := range paragraphs {
		if len(current)+len(p)+2 <= c.maxChars {
			if current == "" {
				startIdx = cursor
				current = p
			} else {
				current = current + "\n\n" + p
			}
			cursor += len(p) + 2
			continue
		}

		if current != "" {
			endIdx := startIdx + len(current)
			passages = append(passages, domain.Passage{Text: current, StartChar: startIdx, EndChar: endIdx})
			// Seed the next accumulator with the tail of the emitted
			// passage so adjacent passages share at most overlapChars.
			overlapText := current
			if c.overlapChars < len(current) {
				overlapText = current[runeStart(current, len(current)-c.overlapChars):]
			}
			current = overlapText + "\n\n" + p
			startIdx = endIdx - len(overlapText)
			cursor = startIdx + len(current)
			continue
		}

		// Single paragraph over budget: fixed windows advancing by
		// maxChars-overlapChars, offsets relative to the paragraph's
		// position in the source text.
		stride := c.maxChars - c.overlapChars
		for i := 0; i < len(p); i += stride {
			start := runeStart(p, i)
			end := i + c.maxChars
			if end > len(p) {
				end = len(p)
			} else {
				end = runeStart(p, end)
			}
			seg := p[start:end]
			s := cursor + start
			passages = append(passages, domain.Passage{Text: seg, StartChar: s, EndChar: s + len(seg)})
		}
		cursor += len(p) + 2
	}
	if current != "" {
		passages = append(passages, domain.Passage{Text: current, StartChar: startIdx, EndChar: startIdx + len(current)})
	}
	return passages, nil
}

// runeStart backs idx up to the nearest rune boundary so byte-offset cuts
// never split a multi-byte character.
func runeStart(s string, idx int) int {
	if idx >= len(s) {
		return len(s)
	}
	for idx > 0 && !utf8.RuneStart(s[idx]) {
		idx--
	}
	return idx
}
