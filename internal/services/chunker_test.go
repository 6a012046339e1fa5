package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextIsOneChunk(t *testing.T) {
	chunker := NewTextChunker()

	chunks := chunker.Chunk("Senior Go engineer.\n\nPayments team.", 1000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Senior Go engineer.\n\nPayments team.", chunks[0])
}

func TestChunk_SplitsAtParagraphs(t *testing.T) {
	chunker := NewTextChunker()

	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)

	chunks := chunker.Chunk(first+"\n\n"+second, 100)
	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0])
	assert.Equal(t, second, chunks[1])
}

func TestChunk_OversizedParagraphSplitsBySentence(t *testing.T) {
	chunker := NewTextChunker()

	paragraph := strings.Repeat("This is a sentence about the role. ", 10)

	chunks := chunker.Chunk(paragraph, 100)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
		assert.NotEmpty(t, chunk)
	}
}

func TestChunk_EmptyAndBlankInput(t *testing.T) {
	chunker := NewTextChunker()

	assert.Empty(t, chunker.Chunk("", 100))
	assert.Empty(t, chunker.Chunk("\n\n\n\n", 100))
}
