package links

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaevor/go-nanoid"
)

const (
	controlKeyLength = 24
	maxIDAttempts    = 10
)

var errIDSpaceExhausted = errors.New("could not generate a unique link id")

// Options configures link validation and generation.
type Options struct {
	MaxIDLength     int
	MaxAutoIDLength int
}

// NewLink is a request to create a link. An empty ID asks for a generated one.
type NewLink struct {
	ID     string
	Target string
}

// Created is a stored link together with its plaintext control key, which is only
// available at creation time.
type Created struct {
	Link       *Link
	ControlKey string
}

// Edit is a request to change a link's ID and/or target.
type Edit struct {
	ID         string
	ControlKey string
	Changes
}

// Service implements the link operations on top of a Repository.
type Service struct {
	repo        Repository
	hasher      KeyHasher
	newID       func() string
	newKey      func() string
	maxIDLength int
	now         func() time.Time
}

// NewService creates a link service.
func NewService(repo Repository, hasher KeyHasher, opts Options) (*Service, error) {
	newID, err := nanoid.Standard(opts.MaxAutoIDLength)
	if err != nil {
		return nil, fmt.Errorf("auto id generator: %w", err)
	}

	newKey, err := nanoid.Standard(controlKeyLength)
	if err != nil {
		return nil, fmt.Errorf("control key generator: %w", err)
	}

	return &Service{
		repo:        repo,
		hasher:      hasher,
		newID:       newID,
		newKey:      newKey,
		maxIDLength: opts.MaxIDLength,
		now:         time.Now,
	}, nil
}

// AddLink creates one link.
func (s *Service) AddLink(ctx context.Context, req NewLink) (*Created, error) {
	created, err := s.prepare(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, created.Link); err != nil {
		return nil, err
	}

	return created, nil
}

// AddLinks creates all links or none. The first invalid request aborts the batch with a
// *BulkError naming its position.
func (s *Service) AddLinks(ctx context.Context, reqs []NewLink) ([]*Created, error) {
	results := make([]*Created, 0, len(reqs))
	reserved := make(map[string]struct{}, len(reqs))

	for i, req := range reqs {
		created, err := s.prepare(ctx, req, reserved)
		if err != nil {
			return nil, &BulkError{Index: i + 1, Err: err}
		}

		reserved[created.Link.ID] = struct{}{}
		results = append(results, created)
	}

	batch := make([]*Link, len(results))
	for i, created := range results {
		batch[i] = created.Link
	}

	if err := s.repo.Create(ctx, batch...); err != nil {
		return nil, err
	}

	return results, nil
}

// prepare validates req and builds the link to store. IDs in reserved count as taken.
func (s *Service) prepare(ctx context.Context, req NewLink, reserved map[string]struct{}) (*Created, error) {
	id := req.ID
	if id != "" {
		if err := s.validateID(id); err != nil {
			return nil, err
		}

		if err := s.ensureAvailable(ctx, id, reserved); err != nil {
			return nil, err
		}
	}

	target, err := NormalizeTarget(req.Target)
	if err != nil {
		return nil, err
	}

	if id == "" {
		if id, err = s.generateID(ctx, reserved); err != nil {
			return nil, err
		}
	}

	key := s.newKey()

	hash, err := s.hasher.Hash(key)
	if err != nil {
		return nil, err
	}

	return &Created{
		Link: &Link{
			ID:             id,
			Target:         target,
			ControlKeyHash: hash,
			AddedAt:        s.now().UTC(),
		},
		ControlKey: key,
	}, nil
}

func (s *Service) validateID(id string) error {
	if strings.ContainsAny(id, "/?# ") {
		return fmt.Errorf("%w: %q contains reserved characters", ErrInvalidID, id)
	}

	if len(id) > s.maxIDLength {
		return fmt.Errorf("%w: %d > %d", ErrIDTooLong, len(id), s.maxIDLength)
	}

	return nil
}

func (s *Service) ensureAvailable(ctx context.Context, id string, reserved map[string]struct{}) error {
	if _, taken := reserved[id]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	return nil
}

func (s *Service) generateID(ctx context.Context, reserved map[string]struct{}) (string, error) {
	for range maxIDAttempts {
		id := s.newID()

		err := s.ensureAvailable(ctx, id, reserved)
		if err == nil {
			return id, nil
		}

		if !errors.Is(err, ErrDuplicateID) {
			return "", err
		}
	}

	return "", errIDSpaceExhausted
}

// ListLinks returns all links, newest first.
func (s *Service) ListLinks(ctx context.Context) ([]*Link, error) {
	return s.repo.List(ctx)
}

// Resolve returns the link for id.
func (s *Service) Resolve(ctx context.Context, id string) (*Link, error) {
	return s.repo.Get(ctx, id)
}

// CheckID reports whether id is free to use.
func (s *Service) CheckID(ctx context.Context, id string) (bool, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return false, err
	}

	return !exists, nil
}

// EditLink changes a link's ID and/or target after checking the control key.
func (s *Service) EditLink(ctx context.Context, req Edit) (*Link, error) {
	if req.NewID == "" && req.Target == "" {
		return nil, ErrNothingToEdit
	}

	if err := s.authorize(ctx, req.ID, req.ControlKey); err != nil {
		return nil, err
	}

	changes := Changes{}

	if req.NewID != "" && req.NewID != req.ID {
		if err := s.validateID(req.NewID); err != nil {
			return nil, err
		}

		if err := s.ensureAvailable(ctx, req.NewID, nil); err != nil {
			return nil, err
		}

		changes.NewID = req.NewID
	}

	if req.Target != "" {
		target, err := NormalizeTarget(req.Target)
		if err != nil {
			return nil, err
		}

		changes.Target = target
	}

	return s.repo.Update(ctx, req.ID, changes)
}

// DeleteLink removes a link after checking the control key.
func (s *Service) DeleteLink(ctx context.Context, id, controlKey string) error {
	if err := s.authorize(ctx, id, controlKey); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// RecordVisit counts one access of id.
func (s *Service) RecordVisit(ctx context.Context, id string) error {
	return s.repo.IncrementVisits(ctx, id, 1)
}

func (s *Service) authorize(ctx context.Context, id, controlKey string) error {
	link, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(link.ControlKeyHash, controlKey)
	if err != nil {
		return err
	}

	if !ok {
		return ErrInvalidControlKey
	}

	return nil
}
