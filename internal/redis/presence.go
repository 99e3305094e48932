package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceTTL = 60 * time.Second

// PresenceStore tracks which users currently hold an open chat
// connection. Keys expire on their own, so a crashed instance cannot
// leave users stuck online.
type PresenceStore struct {
	client *redis.Client
}

func NewPresenceStore(ctx context.Context, redisURL string) (*PresenceStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &PresenceStore{client: client}, nil
}

func (s *PresenceStore) Close() error {
	return s.client.Close()
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("presence:%d", userID)
}

// SetOnline marks the user online. Called on connect and refreshed from
// the connection's heartbeat, so the TTL only runs out when the user is
// genuinely gone.
func (s *PresenceStore) SetOnline(ctx context.Context, userID int64) error {
	return s.client.Set(ctx, presenceKey(userID), "1", presenceTTL).Err()
}

func (s *PresenceStore) SetOffline(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, presenceKey(userID)).Err()
}

func (s *PresenceStore) IsOnline(ctx context.Context, userID int64) (bool, error) {
	n, err := s.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
