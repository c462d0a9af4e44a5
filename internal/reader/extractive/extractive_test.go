package extractive

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateEmptyContexts(t *testing.T) {
	g := New(3)
	out, err := g.Generate(context.Background(), "what is raft?", nil)
	require.NoError(t, err)
	require.Equal(t, NoContextAnswer, out)
}

func TestGenerateKeepsOriginalOrder(t *testing.T) {
	g := New(2)
	ctxs := []string{
		"Raft elects a leader through randomized timeouts. The leader replicates log entries to followers. Snapshots compact the log.",
	}
	out, err := g.Generate(context.Background(), "how does raft elect a leader?", ctxs)
	require.NoError(t, err)
	first := strings.Index(out, "leader")
	require.GreaterOrEqual(t, first, 0)
	// Selected sentences appear in source order, not score order.
	for _, sent := range strings.SplitAfter(out, ". ") {
		require.NotEmpty(t, strings.TrimSpace(sent))
	}
	idxElect := strings.Index(out, "elects")
	idxRepl := strings.Index(out, "replicates")
	if idxElect >= 0 && idxRepl >= 0 {
		require.Less(t, idxElect, idxRepl)
	}
}

func TestGenerateCapsSentences(t *testing.T) {
	g := New(2)
	ctxs := []string{"One fact here. Two facts here. Three facts here. Four facts here."}
	out, err := g.Generate(context.Background(), "facts", ctxs)
	require.NoError(t, err)
	require.LessOrEqual(t, strings.Count(out, "."), 2)
}

func TestGenerateQuestionTermsBoosted(t *testing.T) {
	g := New(1)
	ctxs := []string{
		"Databases store rows durably. Vector indexes score embeddings by inner product. Caches evict entries under pressure.",
	}
	out, err := g.Generate(context.Background(), "how do vector indexes score embeddings?", ctxs)
	require.NoError(t, err)
	require.Contains(t, out, "inner product")
}

func TestGenerateNoSentenceBoundary(t *testing.T) {
	g := New(3)
	out, err := g.Generate(context.Background(), "q", []string{"fragment without terminal punctuation"})
	require.NoError(t, err)
	require.Equal(t, "fragment without terminal punctuation", out)
}
