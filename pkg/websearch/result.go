package websearch

import "time"

// Result is one cached web-search hit. Immutable once cached until expiry.
type Result struct {
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Link        string    `json:"link"`
	DisplayLink string    `json:"displayLink"`
	CachedAt    time.Time `json:"cached_at,omitempty"`
}
