package redisx

import "time"

const (
	// Live session tree: hash session:{userid}, one field per session field (JSON text values).
	KeySession     = "session:%s"
	PatternSession = "session:*"

	// Tree change notifications published after every write to a session hash.
	ChannelTreeChanged = "livetree:changed"

	// Keyspace notifications (notify-keyspace-events) for session hashes, any db.
	PatternSessionKeyspace = "__keyspace@*__:session:*"

	// Dedup event processing: dedup:{service}:{id} (id = event_id)
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
