package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// Open creates a store from a URL:
//
//	file:///path/to/dir     (file:// alone uses ~/.config/dashgrid/boards)
//	redis://host:6379/0     (also rediss://)
//	mongodb://host:27017/db (also mongodb+srv://; db defaults to "dashgrid")
//
// A bare path without a scheme is treated as a file store directory.
func Open(ctx context.Context, rawURL string) (Store, error) {
	if !strings.Contains(rawURL, "://") {
		return openFile(rawURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse store URL")
	}

	switch u.Scheme {
	case "file":
		return openFile(strings.TrimPrefix(rawURL, "file://"))

	case "redis", "rediss":
		opts, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse redis URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		s := NewRedisStore(client, "")
		s.owned = true
		return s, nil

	case "mongodb", "mongodb+srv":
		s, err := ConnectMongo(ctx, rawURL, strings.TrimPrefix(u.Path, "/"))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported store scheme %q (want file, redis or mongodb)", u.Scheme)
}

func openFile(dir string) (Store, error) {
	s, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}
