package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// Knowledge doc types accepted for ingestion.
const (
	DocTypeJobDescription  = "job_description"
	DocTypeInterviewRubric = "interview_rubric"
)

// ContextRetriever is the narrow knowledge dependency of the turn
// generator.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, query string) (string, error)
}

// Embedder produces the query/document vectors for the knowledge store.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// KnowledgeService stores job descriptions and interview rubrics in qdrant
// and retrieves the snippets most relevant to the current conversation as
// context for adaptive question generation.
type KnowledgeService interface {
	ContextRetriever
	InitCollection() error
	IngestDocument(ctx context.Context, docID, docType, text string) (int, error)
	DeleteDocument(ctx context.Context, docID string) error
}

type knowledgeSnippet struct {
	Score   float32
	Text    string
	DocType string
}

type knowledgeService struct {
	client         *qdrant.Client
	embedder       Embedder
	chunker        *TextChunker
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewKnowledgeService(urlStr, apiKey, collectionName string, embedder Embedder, log *zap.Logger) (KnowledgeService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &knowledgeService{
		client:         client,
		embedder:       embedder,
		chunker:        NewTextChunker(),
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 dimension
		logger:         log,
	}, nil
}

// InitCollection implements KnowledgeService.
func (k *knowledgeService) InitCollection() error {
	ctx := context.Background()

	exists, err := k.client.CollectionExists(ctx, k.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = k.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: k.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     k.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	k.logger.Info("qdrant collection created", zap.String("collection", k.collectionName))
	return nil
}

// IngestDocument implements KnowledgeService. The text is chunked and each
// chunk embedded and upserted; the chunk count is returned.
func (k *knowledgeService) IngestDocument(ctx context.Context, docID, docType, text string) (int, error) {
	chunks := k.chunker.Chunk(text, 1000)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s produced no chunks", docID)
	}

	for i, chunk := range chunks {
		embedding, err := k.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		point := &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(uuid.New().ID())),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"doc_id":   docID,
				"doc_type": docType,
				"chunk":    i,
				"text":     chunk,
			}),
		}

		_, err = k.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: k.collectionName,
			Points:         []*qdrant.PointStruct{point},
		})
		if err != nil {
			return i, fmt.Errorf("failed to upsert chunk %d: %w", i, err)
		}
	}

	return len(chunks), nil
}

// RetrieveContext implements KnowledgeService. Per-type search failures are
// logged and skipped; the formatted surviving snippets are returned.
func (k *knowledgeService) RetrieveContext(ctx context.Context, query string) (string, error) {
	embedding, err := k.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed retrieval query: %w", err)
	}

	var snippets []knowledgeSnippet
	for _, docType := range []string{DocTypeJobDescription, DocTypeInterviewRubric} {
		results, err := k.searchSimilar(ctx, embedding, docType, 2)
		if err != nil {
			k.logger.Warn("knowledge search failed",
				zap.String("doc_type", docType),
				zap.Error(err),
			)
			continue
		}
		snippets = append(snippets, results...)
	}

	return formatSnippets(snippets), nil
}

func (k *knowledgeService) searchSimilar(ctx context.Context, embedding []float32, docType string, limit int) ([]knowledgeSnippet, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_type", docType),
		},
	}

	points, err := k.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: k.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	var snippets []knowledgeSnippet
	for _, point := range points {
		snippet := knowledgeSnippet{Score: point.Score, DocType: docType}
		if text, ok := point.Payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.Text = val.StringValue
			}
		}
		if snippet.Text != "" {
			snippets = append(snippets, snippet)
		}
	}
	return snippets, nil
}

// DeleteDocument implements KnowledgeService.
func (k *knowledgeService) DeleteDocument(ctx context.Context, docID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", docID),
		},
	}

	_, err := k.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: k.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func formatSnippets(snippets []knowledgeSnippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var parts []string
	for _, snippet := range snippets {
		parts = append(parts, fmt.Sprintf("[%s] %s", snippet.DocType, strings.TrimSpace(snippet.Text)))
	}
	return strings.Join(parts, "\n")
}
