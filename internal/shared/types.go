package shared

// Asynq task types and queues used across the API and the worker.
const (
	TypeBookThumbnail = "book:thumbnail"
	TypeSweepUploads  = "book:sweep_uploads"

	QueueBook    = "book"
	QueueDefault = "default"
)
