package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Book is the persisted catalog record. CoverImage and File hold the
// durable media-store URLs and are never empty on a stored row.
type Book struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Description string    `json:"description"`
	Author      uuid.UUID `json:"author"`
	CoverImage  string    `json:"coverImage"`
	File        string    `json:"file"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuthorProjection is the restricted author view embedded by the
// join-backed read paths.
type AuthorProjection struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookWithAuthor is a Book whose author id is replaced by the embedded
// projection.
type BookWithAuthor struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Genre       string           `json:"genre"`
	Description string           `json:"description"`
	Author      AuthorProjection `json:"author"`
	CoverImage  string           `json:"coverImage"`
	File        string           `json:"file"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// StagedFile points at a multipart upload already written to the local
// staging directory under a store-generated unique name.
type StagedFile struct {
	Path     string
	Name     string
	MimeType string
}

type CreateBookRequest struct {
	Title       string
	Genre       string
	Description string
	Author      uuid.UUID
	CoverImage  StagedFile
	File        StagedFile
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required")),
		validation.Field(&r.Genre, validation.Required.Error("genre is required")),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
	)
}

// UpdateBookRequest: nil asset pointers mean "keep the stored asset".
// Text fields carry no such absent/empty distinction and always
// overwrite the record.
type UpdateBookRequest struct {
	Title       string
	Genre       string
	Description string
	CoverImage  *StagedFile
	File        *StagedFile
}

type CreateBookResponse struct {
	ID uuid.UUID `json:"id"`
}
