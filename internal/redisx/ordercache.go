package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OrderCache keeps serialized order bodies keyed by order id. Misses and
// redis failures both just fall through to the database.
type OrderCache struct {
	R *redis.Client
}

func (c *OrderCache) Get(ctx context.Context, id int64) ([]byte, bool) {
	b, err := c.R.Get(ctx, fmt.Sprintf(KeyOrder, id)).Bytes()
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

func (c *OrderCache) Set(ctx context.Context, id int64, body []byte) {
	_ = c.R.Set(ctx, fmt.Sprintf(KeyOrder, id), body, TTLOrderCache).Err()
}

func (c *OrderCache) Delete(ctx context.Context, id int64) {
	_ = c.R.Del(ctx, fmt.Sprintf(KeyOrder, id)).Err()
}
