package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainbin/internal/config"
	"brainbin/internal/repositories"
	"brainbin/internal/services"
	"brainbin/internal/services/dto"
	"brainbin/internal/storage"
	"brainbin/internal/validator"
	"brainbin/internal/workers"
	"brainbin/pkg/apperrors"
)

type IngestHandler struct {
	*BaseHandler
	inference *services.Inference
	store     storage.Storage
	queue     *workers.TaskQueue
	cfg       *config.Config
}

func NewIngestHandler(
	v *validator.Validator,
	inference *services.Inference,
	store storage.Storage,
	queue *workers.TaskQueue,
	cfg *config.Config,
) *IngestHandler {
	return &IngestHandler{
		BaseHandler: NewBaseHandler(v),
		inference:   inference,
		store:       store,
		queue:       queue,
		cfg:         cfg,
	}
}

func (h *IngestHandler) service(c *gin.Context) *services.IngestService {
	db := h.GetDB(c)
	return services.NewIngestService(
		repositories.NewDocumentRepository(db),
		repositories.NewChunkRepository(db),
		h.inference,
		h.store,
		h.cfg,
	)
}

// readUpload pulls the multipart file into memory, enforcing the hard
// size cap while reading.
func (h *IngestHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Request must include a 'file' upload"))
		return "", nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.Ingest.MaxFileSize+1))
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

// Ingest godoc
// @Summary Ingest a document synchronously
// @Tags ingest
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to ingest"
// @Success 200 {object} dto.IngestResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /ingest [post]
func (h *IngestHandler) Ingest(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.service(c).Ingest(c.Request.Context(), userID, filename, data)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IngestAsync godoc
// @Summary Queue a document for background ingestion
// @Tags ingest
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to ingest"
// @Success 202 {object} dto.AsyncIngestResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /ingest/async [post]
func (h *IngestHandler) IngestAsync(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	// The request-scoped context dies with this response; background
	// work runs under the worker's context instead.
	svc := h.service(c)
	taskID, accepted := h.queue.Submit(func(ctx context.Context) (interface{}, error) {
		return svc.Ingest(ctx, userID, filename, data)
	})
	if !accepted {
		apperrors.HandleError(c, apperrors.New(
			apperrors.CodeLimitExceeded, "ingest",
			"Ingest queue is full, try again later", http.StatusServiceUnavailable))
		return
	}

	c.JSON(http.StatusAccepted, dto.AsyncIngestResponse{
		TaskID:  taskID,
		Status:  string(workers.StatusQueued),
		Message: "Document queued for processing",
	})
}

// TaskStatus godoc
// @Summary Poll a background ingest task
// @Tags ingest
// @Security BearerAuth
// @Produce json
// @Param id path string true "Task id"
// @Success 200 {object} workers.TaskResult
// @Router /tasks/{id} [get]
func (h *IngestHandler) TaskStatus(c *gin.Context) {
	if _, ok := h.GetUserID(c); !ok {
		return
	}

	taskID := c.Param("id")
	if _, err := uuid.Parse(taskID); err != nil {
		c.JSON(http.StatusOK, workers.TaskResult{TaskID: taskID, Status: workers.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, h.queue.Status(taskID))
}
