package job

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"elib-backend/internal/domains/book/service"
	"elib-backend/internal/infrastructure/storage"
)

// ThumbnailHandler builds the 300px variant of a freshly uploaded
// cover and stores it next to the original. The variant shares the
// original's public id (same "<name>." prefix), so deleting the cover
// removes it too.
type ThumbnailHandler struct {
	media     storage.MediaStore
	processor *storage.ImageProcessor
	uploadDir string
}

func NewThumbnailHandler(media storage.MediaStore, processor *storage.ImageProcessor, uploadDir string) *ThumbnailHandler {
	return &ThumbnailHandler{
		media:     media,
		processor: processor,
		uploadDir: uploadDir,
	}
}

func (h *ThumbnailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload service.ThumbnailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal thumbnail payload: %w", err)
	}

	log.Info().
		Str("book_id", payload.BookID).
		Str("cover_key", payload.CoverKey).
		Msg("Processing cover thumbnail")

	data, err := h.media.Download(ctx, payload.CoverKey)
	if err != nil {
		return fmt.Errorf("download cover: %w", err)
	}
	if err := h.processor.ValidateImage(data); err != nil {
		// Not retryable: the stored asset will never become an image.
		log.Warn().Err(err).Str("cover_key", payload.CoverKey).Msg("Cover not processable")
		return nil
	}

	thumb, err := h.processor.Thumbnail(data)
	if err != nil {
		return fmt.Errorf("build thumbnail: %w", err)
	}

	if err := h.uploadThumb(ctx, payload.CoverKey, thumb); err != nil {
		return err
	}

	log.Info().
		Str("book_id", payload.BookID).
		Msg("Cover thumbnail stored")

	return nil
}

func (h *ThumbnailHandler) uploadThumb(ctx context.Context, coverKey string, thumb []byte) error {
	dir := path.Dir(coverKey)
	base := path.Base(coverKey)
	name := strings.TrimSuffix(base, path.Ext(base))

	tmp, err := writeTemp(h.uploadDir, name+".thumb.jpg", thumb)
	if err != nil {
		return fmt.Errorf("stage thumbnail: %w", err)
	}
	defer removeTemp(tmp)

	_, err = h.media.UploadFile(ctx, tmp, storage.UploadOptions{
		Folder:       dir,
		Format:       "thumb.jpg",
		Kind:         storage.KindImage,
		OverrideName: name,
		ContentType:  "image/jpeg",
	})
	if err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}
	return nil
}
