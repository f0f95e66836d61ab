package links

import (
	"context"
	"time"
)

// Link is a short link owned by whoever holds its control key.
type Link struct {
	ID             string
	Target         string
	ControlKeyHash string
	AddedAt        time.Time
	VisitCount     int64
}

// Changes describes an edit. Empty fields are left unchanged.
type Changes struct {
	NewID  string
	Target string
}

// Repository defines the interface for link persistence.
type Repository interface {
	// Create stores all links or none of them. A taken ID yields ErrDuplicateID.
	Create(ctx context.Context, links ...*Link) error
	Get(ctx context.Context, id string) (*Link, error)
	// List returns every link, newest first.
	List(ctx context.Context) ([]*Link, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, changes Changes) (*Link, error)
	Delete(ctx context.Context, id string) error
	IncrementVisits(ctx context.Context, id string, n int64) error
}
