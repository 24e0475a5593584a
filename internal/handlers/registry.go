package handlers

import (
	"brainbin/internal/config"
	"brainbin/internal/email"
	"brainbin/internal/llm"
	"brainbin/internal/ratelimit"
	"brainbin/internal/services"
	"brainbin/internal/storage"
	"brainbin/internal/validator"
	"brainbin/internal/workers"
)

// AppHandlers bundles every HTTP handler plus the shared components the
// router needs to wire middleware.
type AppHandlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Ingest   *IngestHandler
	Query    *QueryHandler
	Files    *FilesHandler
	Waitlist *WaitlistHandler

	Limiter *ratelimit.Limiter
	Cfg     *config.Config
}

// Deps carries the long-lived components handlers are built from.
type Deps struct {
	Inference *services.Inference
	Store     storage.Storage
	Answerer  llm.Answerer
	Mailer    email.Provider
	Queue     *workers.TaskQueue
	Limiter   *ratelimit.Limiter
	Cfg       *config.Config
}

func NewAppHandlers(d Deps) *AppHandlers {
	v := validator.New()

	return &AppHandlers{
		Health:   NewHealthHandler(d.Inference),
		Auth:     NewAuthHandler(v, d.Mailer, d.Cfg),
		Ingest:   NewIngestHandler(v, d.Inference, d.Store, d.Queue, d.Cfg),
		Query:    NewQueryHandler(v, d.Inference, d.Answerer),
		Files:    NewFilesHandler(v, d.Store),
		Waitlist: NewWaitlistHandler(v, d.Mailer),
		Limiter:  d.Limiter,
		Cfg:      d.Cfg,
	}
}
