package links_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/link-shortener/internal/links"
	"github.com/serroba/link-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testTarget = "https://example.com/some/long/path"

func newTestService(t *testing.T, repo links.Repository) *links.Service {
	t.Helper()

	svc, err := links.NewService(repo, links.NewBcryptHasher(bcrypt.MinCost), links.Options{
		MaxIDLength:     16,
		MaxAutoIDLength: 12,
	})
	require.NoError(t, err)

	return svc
}

func TestService_AddLink(t *testing.T) {
	ctx := context.Background()

	t.Run("generates id and control key", func(t *testing.T) {
		repo := store.NewMemoryStore()
		svc := newTestService(t, repo)

		created, err := svc.AddLink(ctx, links.NewLink{Target: testTarget})

		require.NoError(t, err)
		assert.Len(t, created.Link.ID, 12)
		assert.Len(t, created.ControlKey, 24)
		assert.NotEqual(t, created.ControlKey, created.Link.ControlKeyHash)

		stored, err := repo.Get(ctx, created.Link.ID)
		require.NoError(t, err)
		assert.Equal(t, testTarget, stored.Target)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.ControlKeyHash), []byte(created.ControlKey)))
	})

	t.Run("uses provided id", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		created, err := svc.AddLink(ctx, links.NewLink{ID: "docs", Target: testTarget})

		require.NoError(t, err)
		assert.Equal(t, "docs", created.Link.ID)
	})

	t.Run("normalizes target", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		created, err := svc.AddLink(ctx, links.NewLink{Target: "HTTPS://Example.COM:443/Path"})

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/Path", created.Link.Target)
	})

	tests := []struct {
		name    string
		req     links.NewLink
		wantErr error
	}{
		{name: "duplicate id", req: links.NewLink{ID: "taken", Target: testTarget}, wantErr: links.ErrDuplicateID},
		{name: "id too long", req: links.NewLink{ID: "abcdefghijklmnopq", Target: testTarget}, wantErr: links.ErrIDTooLong},
		{name: "id with slash", req: links.NewLink{ID: "a/b", Target: testTarget}, wantErr: links.ErrInvalidID},
		{name: "relative target", req: links.NewLink{Target: "/just/a/path"}, wantErr: links.ErrInvalidTarget},
		{name: "target without host", req: links.NewLink{Target: "https://"}, wantErr: links.ErrInvalidTarget},
		{name: "empty target", req: links.NewLink{}, wantErr: links.ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, store.NewMemoryStore())
			_, err := svc.AddLink(ctx, links.NewLink{ID: "taken", Target: testTarget})
			require.NoError(t, err)

			_, err = svc.AddLink(ctx, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_AddLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("creates every link", func(t *testing.T) {
		repo := store.NewMemoryStore()
		svc := newTestService(t, repo)

		created, err := svc.AddLinks(ctx, []links.NewLink{
			{ID: "one", Target: testTarget},
			{Target: testTarget},
			{ID: "three", Target: "https://example.org"},
		})

		require.NoError(t, err)
		require.Len(t, created, 3)
		assert.Equal(t, "one", created[0].Link.ID)
		assert.Equal(t, "three", created[2].Link.ID)

		all, _ := repo.List(ctx)
		assert.Len(t, all, 3)
	})

	t.Run("reports failing request number and stores nothing", func(t *testing.T) {
		repo := store.NewMemoryStore()
		svc := newTestService(t, repo)

		_, err := svc.AddLinks(ctx, []links.NewLink{
			{ID: "ok", Target: testTarget},
			{ID: "bad", Target: "not a url"},
		})

		var bulkErr *links.BulkError
		require.ErrorAs(t, err, &bulkErr)
		assert.Equal(t, 2, bulkErr.Index)
		assert.ErrorIs(t, err, links.ErrInvalidTarget)

		all, _ := repo.List(ctx)
		assert.Empty(t, all)
	})

	t.Run("rejects duplicates inside the batch", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		_, err := svc.AddLinks(ctx, []links.NewLink{
			{ID: "same", Target: testTarget},
			{ID: "other", Target: testTarget},
			{ID: "same", Target: testTarget},
		})

		var bulkErr *links.BulkError
		require.ErrorAs(t, err, &bulkErr)
		assert.Equal(t, 3, bulkErr.Index)
		assert.ErrorIs(t, err, links.ErrDuplicateID)
	})
}

func TestService_EditLink(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*links.Service, *links.Created) {
		t.Helper()

		svc := newTestService(t, store.NewMemoryStore())
		created, err := svc.AddLink(ctx, links.NewLink{ID: "orig", Target: testTarget})
		require.NoError(t, err)

		_, err = svc.AddLink(ctx, links.NewLink{ID: "taken", Target: testTarget})
		require.NoError(t, err)

		return svc, created
	}

	t.Run("changes id and target", func(t *testing.T) {
		svc, created := setup(t)

		link, err := svc.EditLink(ctx, links.Edit{
			ID:         "orig",
			ControlKey: created.ControlKey,
			Changes:    links.Changes{NewID: "renamed", Target: "https://example.org"},
		})

		require.NoError(t, err)
		assert.Equal(t, "renamed", link.ID)
		assert.Equal(t, "https://example.org", link.Target)

		available, err := svc.CheckID(ctx, "orig")
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("keeps id when new id equals current", func(t *testing.T) {
		svc, created := setup(t)

		link, err := svc.EditLink(ctx, links.Edit{
			ID:         "orig",
			ControlKey: created.ControlKey,
			Changes:    links.Changes{NewID: "orig"},
		})

		require.NoError(t, err)
		assert.Equal(t, "orig", link.ID)
	})

	tests := []struct {
		name    string
		edit    func(key string) links.Edit
		wantErr error
	}{
		{
			name:    "nothing to edit",
			edit:    func(key string) links.Edit { return links.Edit{ID: "orig", ControlKey: key} },
			wantErr: links.ErrNothingToEdit,
		},
		{
			name: "missing link",
			edit: func(key string) links.Edit {
				return links.Edit{ID: "nope", ControlKey: key, Changes: links.Changes{Target: testTarget}}
			},
			wantErr: links.ErrNotFound,
		},
		{
			name: "wrong control key",
			edit: func(_ string) links.Edit {
				return links.Edit{ID: "orig", ControlKey: "wrong", Changes: links.Changes{Target: testTarget}}
			},
			wantErr: links.ErrInvalidControlKey,
		},
		{
			name: "new id taken",
			edit: func(key string) links.Edit {
				return links.Edit{ID: "orig", ControlKey: key, Changes: links.Changes{NewID: "taken"}}
			},
			wantErr: links.ErrDuplicateID,
		},
		{
			name: "new id too long",
			edit: func(key string) links.Edit {
				return links.Edit{ID: "orig", ControlKey: key, Changes: links.Changes{NewID: "abcdefghijklmnopq"}}
			},
			wantErr: links.ErrIDTooLong,
		},
		{
			name: "invalid target",
			edit: func(key string) links.Edit {
				return links.Edit{ID: "orig", ControlKey: key, Changes: links.Changes{Target: "nope"}}
			},
			wantErr: links.ErrInvalidTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, created := setup(t)

			_, err := svc.EditLink(ctx, tt.edit(created.ControlKey))

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_DeleteLink(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes with valid key", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		created, err := svc.AddLink(ctx, links.NewLink{ID: "gone", Target: testTarget})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteLink(ctx, "gone", created.ControlKey))

		_, err = svc.Resolve(ctx, "gone")
		assert.ErrorIs(t, err, links.ErrNotFound)
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())
		_, err := svc.AddLink(ctx, links.NewLink{ID: "kept", Target: testTarget})
		require.NoError(t, err)

		err = svc.DeleteLink(ctx, "kept", "wrong")

		assert.ErrorIs(t, err, links.ErrInvalidControlKey)
	})

	t.Run("missing link", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		err := svc.DeleteLink(ctx, "nope", "key")

		assert.ErrorIs(t, err, links.ErrNotFound)
	})
}

func TestService_RecordVisit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, store.NewMemoryStore())

	_, err := svc.AddLink(ctx, links.NewLink{ID: "hits", Target: testTarget})
	require.NoError(t, err)

	require.NoError(t, svc.RecordVisit(ctx, "hits"))
	require.NoError(t, svc.RecordVisit(ctx, "hits"))

	link, err := svc.Resolve(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(2), link.VisitCount)
}

type failingRepo struct {
	links.Repository
}

var errRepo = errors.New("repository down")

func (f *failingRepo) Exists(_ context.Context, _ string) (bool, error) {
	return false, errRepo
}

func TestService_PropagatesRepositoryErrors(t *testing.T) {
	svc := newTestService(t, &failingRepo{Repository: store.NewMemoryStore()})

	_, err := svc.AddLink(context.Background(), links.NewLink{Target: testTarget})
	assert.ErrorIs(t, err, errRepo)

	_, err = svc.CheckID(context.Background(), "x")
	assert.ErrorIs(t, err, errRepo)
}

func TestNewService_RejectsBadGeneratorLength(t *testing.T) {
	_, err := links.NewService(store.NewMemoryStore(), links.NewBcryptHasher(bcrypt.MinCost), links.Options{
		MaxIDLength:     255,
		MaxAutoIDLength: 0,
	})

	assert.Error(t, err)
}
