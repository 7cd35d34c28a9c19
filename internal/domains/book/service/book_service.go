package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"elib-backend/internal/domains/book/model"
	"elib-backend/internal/domains/book/repository"
	"elib-backend/internal/infrastructure/storage"
	types "elib-backend/internal/shared"
	"elib-backend/pkg/cache"
	"elib-backend/pkg/logger"
)

// Media-store folders and formats for the two asset kinds.
const (
	CoverFolder    = "book-covers"
	DocumentFolder = "book-pdfs"
	DocumentFormat = "pdf"
)

const (
	listCacheKey   = "books:all"
	listCacheTTL   = 5 * time.Minute
	detailCacheTTL = 10 * time.Minute
)

type BookService struct {
	repo  repository.RepositoryInterface
	media storage.MediaStore
	cache cache.Cache
	tasks TaskEnqueuer
}

func NewService(
	repo repository.RepositoryInterface,
	media storage.MediaStore,
	cache cache.Cache,
	tasks TaskEnqueuer,
) ServiceInterface {
	return &BookService{
		repo:  repo,
		media: media,
		cache: cache,
		tasks: tasks,
	}
}

// Create uploads both staged assets and persists the record.
// The two uploads run strictly in sequence: if the document upload
// fails, the already-uploaded cover is deleted best-effort before the
// whole operation is reported as an upload failure. Local temp files
// are removed only once the record is persisted, so a failed request
// leaves them for the sweep job.
func (s *BookService) Create(ctx context.Context, req model.CreateBookRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	coverRes, err := s.media.UploadFile(ctx, req.CoverImage.Path, storage.UploadOptions{
		Folder:       CoverFolder,
		Format:       formatFromMime(req.CoverImage.MimeType),
		Kind:         storage.KindImage,
		OverrideName: req.CoverImage.Name,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: cover: %v", model.ErrUploadFailed, err)
	}

	docRes, err := s.media.UploadFile(ctx, req.File.Path, storage.UploadOptions{
		Folder:       DocumentFolder,
		Format:       DocumentFormat,
		Kind:         storage.KindRaw,
		OverrideName: req.File.Name,
	})
	if err != nil {
		s.compensateCoverUpload(ctx, coverRes.URL)
		return uuid.Nil, fmt.Errorf("%w: document: %v", model.ErrUploadFailed, err)
	}

	book := &model.Book{
		Title:       req.Title,
		Genre:       req.Genre,
		Description: req.Description,
		Author:      req.Author,
		CoverImage:  coverRes.URL,
		File:        docRes.URL,
	}

	id, err := s.repo.Create(ctx, book)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create book: %w", err)
	}

	s.removeTemp(req.CoverImage.Path)
	s.removeTemp(req.File.Path)

	s.invalidate(ctx, listCacheKey)
	s.enqueueThumbnail(id, coverRes.Key)

	return id, nil
}

// Update overwrites the text fields with whatever was supplied and
// re-uploads only the assets present in the request. The author field
// is never touched.
func (s *BookService) Update(ctx context.Context, bookID, callerID uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Author != callerID {
		return nil, model.ErrNotOwner
	}

	if req.CoverImage != nil {
		res, err := s.media.UploadFile(ctx, req.CoverImage.Path, storage.UploadOptions{
			Folder:       CoverFolder,
			Format:       formatFromMime(req.CoverImage.MimeType),
			Kind:         storage.KindImage,
			OverrideName: req.CoverImage.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: cover: %v", model.ErrUploadFailed, err)
		}
		s.removeTemp(req.CoverImage.Path)
		book.CoverImage = res.URL
		s.enqueueThumbnail(bookID, res.Key)
	}

	if req.File != nil {
		res, err := s.media.UploadFile(ctx, req.File.Path, storage.UploadOptions{
			Folder:       DocumentFolder,
			Format:       DocumentFormat,
			Kind:         storage.KindRaw,
			OverrideName: req.File.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: document: %v", model.ErrUploadFailed, err)
		}
		s.removeTemp(req.File.Path)
		book.File = res.URL
	}

	book.Title = req.Title
	book.Genre = req.Genre
	book.Description = req.Description

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.invalidate(ctx, listCacheKey, detailCacheKey(bookID))

	return book, nil
}

// Delete removes both remote assets best-effort, then the record.
// A failed remote delete is logged and never blocks record deletion.
func (s *BookService) Delete(ctx context.Context, bookID, callerID uuid.UUID) error {
	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if book.Author != callerID {
		return model.ErrNotOwner
	}

	s.deleteAsset(ctx, book.CoverImage, storage.KindImage)
	s.deleteAsset(ctx, book.File, storage.KindRaw)

	if err := s.repo.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.invalidate(ctx, listCacheKey, detailCacheKey(bookID))

	return nil
}

func (s *BookService) ListMine(ctx context.Context, callerID uuid.UUID) ([]model.BookWithAuthor, error) {
	books, err := s.repo.ListByAuthor(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list own books: %w", err)
	}
	return books, nil
}

func (s *BookService) ListAll(ctx context.Context) ([]model.Book, error) {
	var cached []model.Book
	found, err := s.cache.Get(ctx, listCacheKey, &cached)
	if found {
		return cached, nil
	}
	if err != nil {
		logger.Warn("list cache read failed", err)
	}

	books, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	if err := s.cache.Set(ctx, listCacheKey, books, listCacheTTL); err != nil {
		logger.Warn("list cache write failed", err)
	}

	return books, nil
}

// Get returns the single-record author projection. An empty join
// result maps to not-found explicitly.
func (s *BookService) Get(ctx context.Context, bookID uuid.UUID) (*model.BookWithAuthor, error) {
	key := detailCacheKey(bookID)

	var cached model.BookWithAuthor
	found, err := s.cache.Get(ctx, key, &cached)
	if found {
		return &cached, nil
	}
	if err != nil {
		logger.Warn("detail cache read failed", err)
	}

	book, err := s.repo.GetWithAuthor(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, book, detailCacheTTL); err != nil {
		logger.Warn("detail cache write failed", err)
	}

	return book, nil
}

// Search filters by title: an empty term is an unfiltered listing,
// otherwise a case-insensitive substring match. Zero matches is
// reported as not-found.
func (s *BookService) Search(ctx context.Context, title string) ([]model.Book, error) {
	if title == "" {
		return s.ListAll(ctx)
	}

	books, err := s.repo.SearchByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if len(books) == 0 {
		return nil, model.ErrBookNotFound
	}
	return books, nil
}

// compensateCoverUpload undoes the first upload of a half-finished
// create. Best-effort: the orphaned asset is only logged on failure.
func (s *BookService) compensateCoverUpload(ctx context.Context, coverURL string) {
	publicID, err := storage.PublicIDFromURL(coverURL, storage.KindImage)
	if err != nil {
		logger.Warn("cannot derive cover public id for compensation", err)
		return
	}
	if err := s.media.Delete(ctx, publicID, storage.KindImage); err != nil {
		logger.Warn("compensating cover delete failed", err)
	}
}

func (s *BookService) deleteAsset(ctx context.Context, url string, kind storage.ResourceKind) {
	publicID, err := storage.PublicIDFromURL(url, kind)
	if err != nil {
		logger.Warn("cannot derive asset public id", err)
		return
	}
	if err := s.media.Delete(ctx, publicID, kind); err != nil {
		logger.Warn("remote asset delete failed", err)
	}
}

func (s *BookService) removeTemp(path string) {
	if err := os.Remove(path); err != nil {
		logger.Warn("error while deleting local file", err)
	}
}

func (s *BookService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("cache invalidation failed", err)
	}
}

func (s *BookService) enqueueThumbnail(bookID uuid.UUID, coverKey string) {
	if s.tasks == nil {
		return
	}
	payload, _ := json.Marshal(ThumbnailPayload{BookID: bookID.String(), CoverKey: coverKey})
	task := asynq.NewTask(types.TypeBookThumbnail, payload)
	if _, err := s.tasks.Enqueue(task, asynq.Queue(types.QueueBook), asynq.MaxRetry(2)); err != nil {
		logger.Warn("enqueue thumbnail task failed", err)
	}
}

// ThumbnailPayload is the book:thumbnail task body.
type ThumbnailPayload struct {
	BookID   string `json:"book_id"`
	CoverKey string `json:"cover_key"`
}

func detailCacheKey(id uuid.UUID) string {
	return "books:detail:" + id.String()
}

// formatFromMime derives the media-store format from a declared
// content type ("image/png" -> "png").
func formatFromMime(mimeType string) string {
	if i := strings.LastIndex(mimeType, "/"); i >= 0 {
		return mimeType[i+1:]
	}
	return mimeType
}
