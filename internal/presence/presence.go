package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const onlineTTL = 90 * time.Second

// Tracker records which users currently hold an open websocket. Entries
// expire on their own so a crashed connection cannot leave a user online
// forever; the socket's ping loop refreshes the mark.
type Tracker struct {
	client *redis.Client
}

func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client}
}

func key(userID int) string {
	return fmt.Sprintf("presence:user:%d", userID)
}

func (t *Tracker) MarkOnline(ctx context.Context, userID int) error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Set(ctx, key(userID), "1", onlineTTL).Err()
}

func (t *Tracker) MarkOffline(ctx context.Context, userID int) error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Del(ctx, key(userID)).Err()
}

func (t *Tracker) IsOnline(ctx context.Context, userID int) (bool, error) {
	if t == nil || t.client == nil {
		return false, nil
	}
	n, err := t.client.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
