package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"elib-backend/internal/config"
	"elib-backend/internal/domains/book/model"
	"elib-backend/internal/domains/book/service"
	"elib-backend/internal/shared/middleware"
	"elib-backend/internal/shared/response"
	"elib-backend/internal/shared/utils"
)

// Multipart field names for the two assets.
const (
	fieldCoverImage = "coverImage"
	fieldFile       = "file"
)

type Handler struct {
	service service.ServiceInterface
	upload  config.UploadConfig
}

func NewHandler(service service.ServiceInterface, upload config.UploadConfig) *Handler {
	return &Handler{
		service: service,
		upload:  upload,
	}
}

// Create - POST /api/books
// Requires title/genre/description plus both asset files.
func (h *Handler) Create(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}

	cover, err := h.stageFile(c, fieldCoverImage)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	doc, err := h.stageFile(c, fieldFile)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := requirePDF(doc.Path); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req := model.CreateBookRequest{
		Title:       c.PostForm("title"),
		Genre:       c.PostForm("genre"),
		Description: c.PostForm("description"),
		Author:      callerID,
		CoverImage:  *cover,
		File:        *doc,
	}

	id, err := h.service.Create(c.Request.Context(), req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, model.CreateBookResponse{ID: id})
}

// Update - PATCH /api/books/:bookId
// Asset files are optional; absent files keep the stored assets.
func (h *Handler) Update(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}

	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	req := model.UpdateBookRequest{
		Title:       c.PostForm("title"),
		Genre:       c.PostForm("genre"),
		Description: c.PostForm("description"),
	}

	if hasFile(c, fieldCoverImage) {
		cover, err := h.stageFile(c, fieldCoverImage)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		req.CoverImage = cover
	}

	if hasFile(c, fieldFile) {
		doc, err := h.stageFile(c, fieldFile)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		if err := requirePDF(doc.Path); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		req.File = doc
	}

	book, err := h.service.Update(c.Request.Context(), bookID, callerID, req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, book)
}

// Delete - DELETE /api/books/:bookId
func (h *Handler) Delete(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}

	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), bookID, callerID)
	if model.HandleBookError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMine - GET /api/books
func (h *Handler) ListMine(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Unauthorized(c, "user not authenticated")
		return
	}

	books, err := h.service.ListMine(c.Request.Context(), callerID)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, books)
}

// ListAll - GET /api/books/all
func (h *Handler) ListAll(c *gin.Context) {
	books, err := h.service.ListAll(c.Request.Context())
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, books)
}

// Get - GET /api/books/:bookId
// The single record is returned array-wrapped, matching the listing
// shape of the other read paths.
func (h *Handler) Get(c *gin.Context) {
	bookID, ok := h.bookIDParam(c)
	if !ok {
		return
	}

	book, err := h.service.Get(c.Request.Context(), bookID)
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, []*model.BookWithAuthor{book})
}

// Search - GET /api/books/search?title=
func (h *Handler) Search(c *gin.Context) {
	books, err := h.service.Search(c.Request.Context(), c.Query("title"))
	if model.HandleBookError(c, err) {
		return
	}

	response.Success(c, http.StatusOK, books)
}

func (h *Handler) bookIDParam(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("bookId")
	if !utils.IsValidUUID(raw) {
		model.HandleBookError(c, model.ErrInvalidBookID)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		model.HandleBookError(c, model.ErrInvalidBookID)
		return uuid.Nil, false
	}
	return id, true
}

// stageFile writes a multipart upload into the staging directory under
// a generated unique name and returns its descriptor.
func (h *Handler) stageFile(c *gin.Context, field string) (*model.StagedFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file is required", field)
	}
	if fh.Size > h.upload.MaxFileSize {
		return nil, fmt.Errorf("%s exceeds the %d byte limit", field, h.upload.MaxFileSize)
	}

	if err := os.MkdirAll(h.upload.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot prepare staging directory: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(fh.Filename)
	path := filepath.Join(h.upload.Dir, name)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return nil, fmt.Errorf("cannot stage %s: %w", field, err)
	}

	return &model.StagedFile{
		Path:     path,
		Name:     name,
		MimeType: fh.Header.Get("Content-Type"),
	}, nil
}

func hasFile(c *gin.Context, field string) bool {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return false
	}
	files, ok := form.File[field]
	return ok && len(files) > 0
}

// requirePDF sniffs the staged document and rejects anything that is
// not an actual PDF, regardless of the declared content type.
func requirePDF(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return errors.New("cannot inspect the uploaded document")
	}
	if !mtype.Is("application/pdf") {
		return fmt.Errorf("document must be a PDF, got %s", mtype.String())
	}
	return nil
}
