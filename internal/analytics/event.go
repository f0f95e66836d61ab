package analytics

import "time"

const (
	TopicLinkCreated  = "link.created"
	TopicLinkAccessed = "link.accessed"
)

// LinkCreatedEvent represents an event emitted when a link is added.
type LinkCreatedEvent struct {
	LinkID    string    `json:"linkId"`
	Target    string    `json:"target"`
	Bulk      bool      `json:"bulk,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
}

// LinkAccessedEvent represents an event emitted when a link is followed.
type LinkAccessedEvent struct {
	LinkID     string    `json:"linkId"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}
