package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"empiric/hr-interviewer/internal/models"
)

const conversationTTL = 30 * time.Minute

// ConversationCache keeps the live conversation of an in-progress call in
// redis so webhook turns avoid a DB read. Postgres stays the source of
// truth; a miss here is never an error.
type ConversationCache interface {
	Set(ctx context.Context, candidateID uuid.UUID, conversation models.Conversation) error
	Get(ctx context.Context, candidateID uuid.UUID) (models.Conversation, bool, error)
	Delete(ctx context.Context, candidateID uuid.UUID) error
}

type conversationCache struct {
	client *redis.Client
}

func NewConversationCache(client *redis.Client) ConversationCache {
	return &conversationCache{client: client}
}

func key(candidateID uuid.UUID) string {
	return "conversation:" + candidateID.String()
}

func (c *conversationCache) Set(ctx context.Context, candidateID uuid.UUID, conversation models.Conversation) error {
	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	return c.client.Set(ctx, key(candidateID), data, conversationTTL).Err()
}

func (c *conversationCache) Get(ctx context.Context, candidateID uuid.UUID) (models.Conversation, bool, error) {
	data, err := c.client.Get(ctx, key(candidateID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var conversation models.Conversation
	if err := json.Unmarshal([]byte(data), &conversation); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached conversation: %w", err)
	}
	return conversation, true, nil
}

func (c *conversationCache) Delete(ctx context.Context, candidateID uuid.UUID) error {
	return c.client.Del(ctx, key(candidateID)).Err()
}
