package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"elib-backend/internal/domains/book/model"
)

// ServiceInterface is the book business logic surface.
type ServiceInterface interface {
	Create(ctx context.Context, req model.CreateBookRequest) (uuid.UUID, error)
	Update(ctx context.Context, bookID, callerID uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, bookID, callerID uuid.UUID) error
	ListMine(ctx context.Context, callerID uuid.UUID) ([]model.BookWithAuthor, error)
	ListAll(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, bookID uuid.UUID) (*model.BookWithAuthor, error)
	Search(ctx context.Context, title string) ([]model.Book, error)
}

// TaskEnqueuer is the slice of asynq.Client the service needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
