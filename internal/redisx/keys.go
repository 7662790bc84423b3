package redisx

import "time"

const (
	// Serialized order body: order:{order_id}
	KeyOrder = "order:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
