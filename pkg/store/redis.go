package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/dashgrid/pkg/cache"
)

// DefaultRedisPrefix namespaces every key the redis store writes.
const DefaultRedisPrefix = "dashgrid:"

// RedisStore keeps each document as JSON under <prefix>board:<id> and
// indexes IDs in a sorted set scored by update time. The client is owned
// by the caller unless the store was created by Open.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisStore creates a store on client. An empty prefix uses
// DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) docKey(id string) string { return s.prefix + "board:" + id }

func (s *RedisStore) indexKey() string { return s.prefix + "boards" }

func (s *RedisStore) Get(ctx context.Context, id string) (doc *Document, err error) {
	defer func() { loaded(ctx, "redis", id, err) }()
	if err := validateID(id); err != nil {
		return nil, err
	}

	var data []byte
	err = cache.RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.docKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		data = b
		return cache.Classify(err)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	doc = &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse board %s: %w", id, err)
	}
	return doc, nil
}

// Put writes the document and its index entry in one transaction.
func (s *RedisStore) Put(ctx context.Context, doc *Document) (err error) {
	size := 0
	id := ""
	if doc != nil {
		id = doc.ID
	}
	defer func() { saved(ctx, "redis", id, size, err) }()
	if err := validateDocument(doc); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	size = len(data)

	err = cache.RetryWithBackoff(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.docKey(doc.ID), data, 0)
			pipe.ZAdd(ctx, s.indexKey(), redis.Z{
				Score:  float64(doc.UpdatedAt.UnixNano()),
				Member: doc.ID,
			})
			return nil
		})
		return cache.Classify(err)
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.docKey(id))
			pipe.ZRem(ctx, s.indexKey(), id)
			return nil
		})
		return cache.Classify(err)
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// List reads the index newest first and fetches the documents with one
// MGET. Index entries whose document vanished are skipped.
func (s *RedisStore) List(ctx context.Context) ([]*Document, error) {
	var values []any
	err := cache.RetryWithBackoff(ctx, func() error {
		ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
		if err != nil {
			return cache.Classify(err)
		}
		if len(ids) == 0 {
			values = nil
			return nil
		}
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = s.docKey(id)
		}
		values, err = s.client.MGet(ctx, keys...).Result()
		return cache.Classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	docs := make([]*Document, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			return nil, fmt.Errorf("parse board: %w", err)
		}
		docs = append(docs, &doc)
	}
	slices.SortStableFunc(docs, byRecent)
	return docs, nil
}

// Close closes the client if Open created it.
func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
