package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elib-backend/internal/domains/book/model"
	"elib-backend/internal/infrastructure/storage"
)

type fakeRepo struct {
	books   map[uuid.UUID]*model.Book
	all     []model.Book
	created *model.Book

	createErr error
	updateErr error
	deleteErr error
	searchHit []model.Book
	deleted   []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: map[uuid.UUID]*model.Book{}}
}

func (r *fakeRepo) Create(_ context.Context, b *model.Book) (uuid.UUID, error) {
	if r.createErr != nil {
		return uuid.Nil, r.createErr
	}
	id := uuid.New()
	b.ID = id
	r.created = b
	r.books[id] = b
	return id, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) ListAll(_ context.Context) ([]model.Book, error) {
	return r.all, nil
}

func (r *fakeRepo) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]model.BookWithAuthor, error) {
	var out []model.BookWithAuthor
	for _, b := range r.books {
		if b.Author == authorID {
			out = append(out, model.BookWithAuthor{ID: b.ID, Title: b.Title})
		}
	}
	return out, nil
}

func (r *fakeRepo) GetWithAuthor(_ context.Context, id uuid.UUID) (*model.BookWithAuthor, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return &model.BookWithAuthor{ID: b.ID, Title: b.Title}, nil
}

func (r *fakeRepo) SearchByTitle(_ context.Context, _ string) ([]model.Book, error) {
	return r.searchHit, nil
}

func (r *fakeRepo) Update(_ context.Context, b *model.Book) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	delete(r.books, id)
	return nil
}

type uploadCall struct {
	path string
	opts storage.UploadOptions
}

type deleteCall struct {
	publicID string
	kind     storage.ResourceKind
}

type fakeMedia struct {
	uploads []uploadCall
	deletes []deleteCall

	failOnUpload int // 1-based index of the upload call that fails, 0 = never
	deleteErr    error
}

func (m *fakeMedia) UploadFile(_ context.Context, localPath string, opts storage.UploadOptions) (*storage.UploadResult, error) {
	m.uploads = append(m.uploads, uploadCall{path: localPath, opts: opts})
	if m.failOnUpload == len(m.uploads) {
		return nil, errors.New("connection reset")
	}
	key := opts.Folder + "/" + opts.OverrideName + "." + opts.Format
	return &storage.UploadResult{
		URL: "http://media.local/assets/" + key,
		Key: key,
	}, nil
}

func (m *fakeMedia) Download(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (m *fakeMedia) Delete(_ context.Context, publicID string, kind storage.ResourceKind) error {
	m.deletes = append(m.deletes, deleteCall{publicID: publicID, kind: kind})
	return m.deleteErr
}

type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, _ interface{}) (bool, error) {
	_, ok := c.store[key]
	return ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	c.store[key] = []byte("cached")
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

func stageTemp(t *testing.T, name string) model.StagedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
	mimeType := "application/pdf"
	if filepath.Ext(name) != ".pdf" {
		mimeType = "image/png"
	}
	return model.StagedFile{Path: path, Name: name, MimeType: mimeType}
}

func validCreateRequest(t *testing.T, author uuid.UUID) model.CreateBookRequest {
	t.Helper()
	return model.CreateBookRequest{
		Title:       "The Go Programming Language",
		Genre:       "reference",
		Description: "language walkthrough",
		Author:      author,
		CoverImage:  stageTemp(t, "cover-1.png"),
		File:        stageTemp(t, "doc-1.pdf"),
	}
}

func TestBookService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads both assets and persists the record", func(t *testing.T) {
		repo := newFakeRepo()
		media := &fakeMedia{}
		author := uuid.New()
		req := validCreateRequest(t, author)

		svc := NewService(repo, media, newFakeCache(), nil)

		id, err := svc.Create(ctx, req)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		require.NotNil(t, repo.created)
		assert.Equal(t, author, repo.created.Author)
		assert.Equal(t, "http://media.local/assets/book-covers/cover-1.png.png", repo.created.CoverImage)
		assert.Equal(t, "http://media.local/assets/book-pdfs/doc-1.pdf.pdf", repo.created.File)

		require.Len(t, media.uploads, 2)
		assert.Equal(t, CoverFolder, media.uploads[0].opts.Folder)
		assert.Equal(t, "png", media.uploads[0].opts.Format)
		assert.Equal(t, storage.KindImage, media.uploads[0].opts.Kind)
		assert.Equal(t, DocumentFolder, media.uploads[1].opts.Folder)
		assert.Equal(t, DocumentFormat, media.uploads[1].opts.Format)
		assert.Equal(t, storage.KindRaw, media.uploads[1].opts.Kind)

		assert.NoFileExists(t, req.CoverImage.Path)
		assert.NoFileExists(t, req.File.Path)
	})

	t.Run("rejects missing text fields before any upload", func(t *testing.T) {
		repo := newFakeRepo()
		media := &fakeMedia{}
		req := validCreateRequest(t, uuid.New())
		req.Title = ""

		svc := NewService(repo, media, newFakeCache(), nil)

		_, err := svc.Create(ctx, req)

		require.Error(t, err)
		assert.Empty(t, media.uploads)
		assert.Nil(t, repo.created)
	})

	t.Run("deletes the cover when the document upload fails", func(t *testing.T) {
		repo := newFakeRepo()
		media := &fakeMedia{failOnUpload: 2}
		req := validCreateRequest(t, uuid.New())

		svc := NewService(repo, media, newFakeCache(), nil)

		_, err := svc.Create(ctx, req)

		require.ErrorIs(t, err, model.ErrUploadFailed)
		assert.Nil(t, repo.created)

		require.Len(t, media.deletes, 1)
		assert.Equal(t, "book-covers/cover-1.png", media.deletes[0].publicID)
		assert.Equal(t, storage.KindImage, media.deletes[0].kind)

		// staged files survive a failed create; the sweep job owns them
		assert.FileExists(t, req.CoverImage.Path)
		assert.FileExists(t, req.File.Path)
	})

	t.Run("does not remove temps when persisting fails", func(t *testing.T) {
		repo := newFakeRepo()
		repo.createErr = errors.New("pool exhausted")
		req := validCreateRequest(t, uuid.New())

		svc := NewService(repo, &fakeMedia{}, newFakeCache(), nil)

		_, err := svc.Create(ctx, req)

		require.Error(t, err)
		assert.FileExists(t, req.CoverImage.Path)
		assert.FileExists(t, req.File.Path)
	})

	t.Run("invalidates the listing cache", func(t *testing.T) {
		cache := newFakeCache()
		cache.store[listCacheKey] = []byte("stale")

		svc := NewService(newFakeRepo(), &fakeMedia{}, cache, nil)

		_, err := svc.Create(ctx, validCreateRequest(t, uuid.New()))

		require.NoError(t, err)
		assert.NotContains(t, cache.store, listCacheKey)
	})
}

func TestBookService_Update(t *testing.T) {
	ctx := context.Background()

	seed := func(repo *fakeRepo, author uuid.UUID) uuid.UUID {
		id := uuid.New()
		repo.books[id] = &model.Book{
			ID:          id,
			Title:       "old title",
			Genre:       "old genre",
			Description: "old description",
			Author:      author,
			CoverImage:  "http://media.local/assets/book-covers/old.png",
			File:        "http://media.local/assets/book-pdfs/old.pdf",
		}
		return id
	}

	t.Run("overwrites text and keeps assets when none are sent", func(t *testing.T) {
		repo := newFakeRepo()
		author := uuid.New()
		id := seed(repo, author)
		media := &fakeMedia{}

		svc := NewService(repo, media, newFakeCache(), nil)

		updated, err := svc.Update(ctx, id, author, model.UpdateBookRequest{
			Title:       "new title",
			Genre:       "new genre",
			Description: "new description",
		})

		require.NoError(t, err)
		assert.Equal(t, "new title", updated.Title)
		assert.Equal(t, "new genre", updated.Genre)
		assert.Equal(t, "new description", updated.Description)
		assert.Equal(t, "http://media.local/assets/book-covers/old.png", updated.CoverImage)
		assert.Equal(t, "http://media.local/assets/book-pdfs/old.pdf", updated.File)
		assert.Empty(t, media.uploads)
	})

	t.Run("re-uploads only the supplied asset", func(t *testing.T) {
		repo := newFakeRepo()
		author := uuid.New()
		id := seed(repo, author)
		media := &fakeMedia{}
		cover := stageTemp(t, "cover-2.png")

		svc := NewService(repo, media, newFakeCache(), nil)

		updated, err := svc.Update(ctx, id, author, model.UpdateBookRequest{
			Title:       "new title",
			Genre:       "new genre",
			Description: "new description",
			CoverImage:  &cover,
		})

		require.NoError(t, err)
		require.Len(t, media.uploads, 1)
		assert.Equal(t, CoverFolder, media.uploads[0].opts.Folder)
		assert.Equal(t, "http://media.local/assets/book-covers/cover-2.png.png", updated.CoverImage)
		assert.Equal(t, "http://media.local/assets/book-pdfs/old.pdf", updated.File)
		assert.NoFileExists(t, cover.Path)
	})

	t.Run("never reassigns the author", func(t *testing.T) {
		repo := newFakeRepo()
		author := uuid.New()
		id := seed(repo, author)

		svc := NewService(repo, &fakeMedia{}, newFakeCache(), nil)

		updated, err := svc.Update(ctx, id, author, model.UpdateBookRequest{
			Title:       "t",
			Genre:       "g",
			Description: "d",
		})

		require.NoError(t, err)
		assert.Equal(t, author, updated.Author)
	})

	t.Run("rejects a caller who is not the owner", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, uuid.New())
		media := &fakeMedia{}

		svc := NewService(repo, media, newFakeCache(), nil)

		_, err := svc.Update(ctx, id, uuid.New(), model.UpdateBookRequest{Title: "t"})

		require.ErrorIs(t, err, model.ErrNotOwner)
		assert.Empty(t, media.uploads)
	})

	t.Run("unknown book id maps to not found", func(t *testing.T) {
		svc := NewService(newFakeRepo(), &fakeMedia{}, newFakeCache(), nil)

		_, err := svc.Update(ctx, uuid.New(), uuid.New(), model.UpdateBookRequest{Title: "t"})

		require.ErrorIs(t, err, model.ErrBookNotFound)
	})

	t.Run("invalidates listing and detail caches", func(t *testing.T) {
		repo := newFakeRepo()
		author := uuid.New()
		id := seed(repo, author)
		cache := newFakeCache()
		cache.store[listCacheKey] = []byte("stale")
		cache.store[detailCacheKey(id)] = []byte("stale")

		svc := NewService(repo, &fakeMedia{}, cache, nil)

		_, err := svc.Update(ctx, id, author, model.UpdateBookRequest{
			Title: "t", Genre: "g", Description: "d",
		})

		require.NoError(t, err)
		assert.NotContains(t, cache.store, listCacheKey)
		assert.NotContains(t, cache.store, detailCacheKey(id))
	})
}

func TestBookService_Delete(t *testing.T) {
	ctx := context.Background()

	seed := func(repo *fakeRepo, author uuid.UUID) uuid.UUID {
		id := uuid.New()
		repo.books[id] = &model.Book{
			ID:         id,
			Author:     author,
			CoverImage: "http://media.local/elib/book-covers/abc123.png",
			File:       "http://media.local/elib/book-pdfs/def456.pdf",
		}
		return id
	}

	t.Run("derives per-kind public ids for both assets", func(t *testing.T) {
		repo := newFakeRepo()
		author := uuid.New()
		id := seed(repo, author)
		media := &fakeMedia{}

		svc := NewService(repo, media, newFakeCache(), nil)

		require.NoError(t, svc.Delete(ctx, id, author))

		require.Len(t, media.deletes, 2)
		assert.Equal(t, deleteCall{publicID: "book-covers/abc123", kind: storage.KindImage}, media.deletes[0])
		assert.Equal(t, deleteCall{publicID: "book-pdfs/def456.pdf", kind: storage.KindRaw}, media.deletes[1])
		assert.Equal(t, []uuid.UUID{id}, repo.deleted)
	})

	t.Run("record deletion survives remote delete failures", func(t *testing.T) {
		repo := newFakeRepo()
		author := uuid.New()
		id := seed(repo, author)
		media := &fakeMedia{deleteErr: errors.New("bucket unreachable")}

		svc := NewService(repo, media, newFakeCache(), nil)

		require.NoError(t, svc.Delete(ctx, id, author))
		assert.Equal(t, []uuid.UUID{id}, repo.deleted)
	})

	t.Run("rejects a caller who is not the owner", func(t *testing.T) {
		repo := newFakeRepo()
		id := seed(repo, uuid.New())
		media := &fakeMedia{}

		svc := NewService(repo, media, newFakeCache(), nil)

		err := svc.Delete(ctx, id, uuid.New())

		require.ErrorIs(t, err, model.ErrNotOwner)
		assert.Empty(t, media.deletes)
		assert.Empty(t, repo.deleted)
	})

	t.Run("unknown book id maps to not found", func(t *testing.T) {
		svc := NewService(newFakeRepo(), &fakeMedia{}, newFakeCache(), nil)

		err := svc.Delete(ctx, uuid.New(), uuid.New())

		require.ErrorIs(t, err, model.ErrBookNotFound)
	})
}

func TestBookService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("empty term returns the unfiltered listing", func(t *testing.T) {
		repo := newFakeRepo()
		repo.all = []model.Book{{Title: "a"}, {Title: "b"}}

		svc := NewService(repo, &fakeMedia{}, newFakeCache(), nil)

		books, err := svc.Search(ctx, "")

		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("zero matches maps to not found", func(t *testing.T) {
		svc := NewService(newFakeRepo(), &fakeMedia{}, newFakeCache(), nil)

		_, err := svc.Search(ctx, "no such title")

		require.ErrorIs(t, err, model.ErrBookNotFound)
	})

	t.Run("returns the matching rows", func(t *testing.T) {
		repo := newFakeRepo()
		repo.searchHit = []model.Book{{Title: "go in action"}}

		svc := NewService(repo, &fakeMedia{}, newFakeCache(), nil)

		books, err := svc.Search(ctx, "go")

		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "go in action", books[0].Title)
	})
}

func TestFormatFromMime(t *testing.T) {
	assert.Equal(t, "png", formatFromMime("image/png"))
	assert.Equal(t, "jpeg", formatFromMime("image/jpeg"))
	assert.Equal(t, "png", formatFromMime("png"))
}
