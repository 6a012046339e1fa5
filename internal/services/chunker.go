package services

import "strings"

// TextChunker packs paragraphs (and, for oversized paragraphs, sentences)
// into chunks below a size limit before embedding. Job briefs are short, so
// no overlap is carried between chunks.
type TextChunker struct{}

func NewTextChunker() *TextChunker {
	return &TextChunker{}
}

func (c *TextChunker) Chunk(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	appendPiece := func(piece, sep string) {
		if current.Len() > 0 && current.Len()+len(sep)+len(piece) > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(piece)
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if len(paragraph) > maxChunkSize {
			for _, sentence := range splitSentences(paragraph) {
				appendPiece(sentence, " ")
			}
			continue
		}

		appendPiece(paragraph, "\n\n")
	}
	flush()

	return chunks
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var sentences []string
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
