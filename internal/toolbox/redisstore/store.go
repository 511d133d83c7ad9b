// Package redisstore provides a Redis-backed toolbox repository. Tools are
// kept as JSON values of a single hash keyed by tool id.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxsml/dispatch/internal/toolbox"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the hash holding the tools when no key is configured.
const DefaultKey = "toolbox:tools"

// Store persists tools in Redis.
type Store struct {
	client redis.Cmdable
	key    string
}

// New creates a store using client. An empty key selects DefaultKey.
func New(client redis.Cmdable, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Open connects to the Redis server at url, for example
// "redis://localhost:6379/0", and verifies the connection.
func Open(ctx context.Context, url string) (*Store, *redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, ""), client, nil
}

func (s *Store) Add(ctx context.Context, name string) (toolbox.Tool, error) {
	tool := toolbox.Tool{ID: uuid.New(), Name: name}
	data, err := json.Marshal(tool)
	if err != nil {
		return toolbox.Tool{}, fmt.Errorf("encode tool: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, tool.ID.String(), data).Err(); err != nil {
		return toolbox.Tool{}, fmt.Errorf("add tool: %w", err)
	}
	return tool, nil
}

func (s *Store) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.client.HDel(ctx, s.key, id.String()).Result()
	if err != nil {
		return false, fmt.Errorf("remove tool: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*toolbox.Tool, error) {
	data, err := s.client.HGet(ctx, s.key, id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tool: %w", err)
	}
	var tool toolbox.Tool
	if err := json.Unmarshal(data, &tool); err != nil {
		return nil, fmt.Errorf("decode tool %s: %w", id, err)
	}
	return &tool, nil
}

func (s *Store) List(ctx context.Context) ([]toolbox.Tool, error) {
	values, err := s.client.HVals(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	tools := make([]toolbox.Tool, 0, len(values))
	for _, v := range values {
		var tool toolbox.Tool
		if err := json.Unmarshal([]byte(v), &tool); err != nil {
			return nil, fmt.Errorf("decode tool: %w", err)
		}
		tools = append(tools, tool)
	}
	toolbox.SortTools(tools)
	return tools, nil
}

var _ toolbox.Repository = (*Store)(nil)
