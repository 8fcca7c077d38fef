package cache

import (
	"net/http"
	"time"
)

// Entry is one cached upstream response keyed by canonical URL.
// Once inserted into a Store the entry is shared read-only between the store
// and every caller that receives it; neither Body nor Header may be mutated.
type Entry struct {
	Key       string
	Status    int
	Header    http.Header
	Body      []byte
	Size      int64
	CreatedAt time.Time
}

// NewEntry builds an Entry for key from an upstream response.
// Size accounts for the body bytes only.
func NewEntry(key string, status int, header http.Header, body []byte, now time.Time) *Entry {
	return &Entry{
		Key:       key,
		Status:    status,
		Header:    header,
		Body:      body,
		Size:      int64(len(body)),
		CreatedAt: now,
	}
}

// EntryInfo is the dashboard-facing view of a resident entry.
type EntryInfo struct {
	Key       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is a point-in-time snapshot of store counters.
// Items and UsageBytes are taken together under the store lock, so a snapshot
// never observes a half-applied operation.
type Stats struct {
	Items         int   `json:"items"`
	UsageBytes    int64 `json:"current_usage_bytes"`
	CapacityBytes int64 `json:"capacity_bytes"`
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Evictions     int64 `json:"evictions"`
}
