package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"helphop/internal/domain"
	"helphop/pkg/e"
)

// BroadcastQueue is the handoff point between intake and the rescuer
// channel: intake LPUSHes accepted incidents, the sender BRPops them.
type BroadcastQueue struct {
	client *redis.Client
	key    string
}

func NewBroadcastQueue(client *redis.Client, key string) *BroadcastQueue {
	return &BroadcastQueue{client: client, key: key}
}

// Broadcast implements service.Publisher.
func (q *BroadcastQueue) Broadcast(ctx context.Context, incident *domain.Incident) error {
	b, err := json.Marshal(incident)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, b).Err()
}

func (q *BroadcastQueue) BRPop(ctx context.Context, timeout time.Duration) (domain.Incident, error) {
	var inc domain.Incident

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return inc, e.ErrQueueEmpty
		}
		return inc, err
	}
	if len(res) < 2 {
		return inc, redis.Nil
	}
	if err := json.Unmarshal([]byte(res[1]), &inc); err != nil {
		return inc, err
	}
	return inc, nil
}
