package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"formalyze/internal/model"
)

// ConversationTTL is how long an idle authoring conversation is kept
const ConversationTTL = 24 * time.Hour

// ConversationCache stores AI authoring conversations in Redis
type ConversationCache interface {
	Set(ctx context.Context, conv *model.Conversation) error
	Get(ctx context.Context, id string) (*model.Conversation, error)
	Delete(ctx context.Context, id string) error
}

type conversationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConversationCache creates a new conversation cache
func NewConversationCache(client *redis.Client) ConversationCache {
	return &conversationCache{
		client: client,
		ttl:    ConversationTTL,
	}
}

func (c *conversationCache) key(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

// Set stores the conversation and refreshes its TTL
func (c *conversationCache) Set(ctx context.Context, conv *model.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(conv.ID), data, c.ttl).Err()
}

func (c *conversationCache) Get(ctx context.Context, id string) (*model.Conversation, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *conversationCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
