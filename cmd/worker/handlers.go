package main

import (
	"github.com/hibiken/asynq"

	"elib-backend/internal/domains/book/job"
	types "elib-backend/internal/shared"
	"elib-backend/pkg/container"
)

// HandlerRegistry holds every task handler the worker serves.
type HandlerRegistry struct {
	thumbnail *job.ThumbnailHandler
	sweep     *job.SweepHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		thumbnail: job.NewThumbnailHandler(c.Media, c.Processor, c.Config.Upload.Dir),
		sweep:     job.NewSweepHandler(c.Config.Upload.Dir),
	}
}

func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(types.TypeBookThumbnail, r.thumbnail)
	mux.Handle(types.TypeSweepUploads, r.sweep)
}
