package redisx

import "time"

const (
	// Session: session:{token} -> user id
	KeySession = "session:%s"

	// Tokens of one user, for bulk logout: user_sessions:{user_id} (set)
	KeyUserSessions = "user_sessions:%d"

	// Pending lines per vendor: fulfillment:vendor:{vendor_id} (set of "order:product")
	KeyVendorPending = "fulfillment:vendor:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession = 15 * time.Minute
	TTLDedup   = 48 * time.Hour
)
