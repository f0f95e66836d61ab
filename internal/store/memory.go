package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/serroba/link-shortener/internal/links"
)

// MemoryStore is an in-memory implementation of links.Repository.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[string]links.Link
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[string]links.Link),
	}
}

func (m *MemoryStore) Create(_ context.Context, batch ...*links.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(batch))

	for _, link := range batch {
		_, inBatch := seen[link.ID]
		if _, exists := m.links[link.ID]; exists || inBatch {
			return fmt.Errorf("%w: %s", links.ErrDuplicateID, link.ID)
		}

		seen[link.ID] = struct{}{}
	}

	for _, link := range batch {
		m.links[link.ID] = *link
	}

	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*links.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok {
		return nil, links.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*links.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*links.Link, 0, len(m.links))

	for _, link := range m.links {
		result = append(result, &link)
	}

	slices.SortFunc(result, func(a, b *links.Link) int {
		if c := b.AddedAt.Compare(a.AddedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return result, nil
}

func (m *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[id]

	return ok, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, changes links.Changes) (*links.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return nil, links.ErrNotFound
	}

	if changes.NewID != "" && changes.NewID != id {
		if _, taken := m.links[changes.NewID]; taken {
			return nil, fmt.Errorf("%w: %s", links.ErrDuplicateID, changes.NewID)
		}

		delete(m.links, id)
		link.ID = changes.NewID
	}

	if changes.Target != "" {
		link.Target = changes.Target
	}

	m.links[link.ID] = link

	return &link, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[id]; !ok {
		return links.ErrNotFound
	}

	delete(m.links, id)

	return nil
}

func (m *MemoryStore) IncrementVisits(_ context.Context, id string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return links.ErrNotFound
	}

	link.VisitCount += n
	m.links[id] = link

	return nil
}

var _ links.Repository = (*MemoryStore)(nil)
