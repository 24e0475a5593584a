package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainbin/internal/repositories"
	"brainbin/internal/services"
	"brainbin/internal/storage"
	"brainbin/internal/validator"
	"brainbin/pkg/apperrors"
)

type FilesHandler struct {
	*BaseHandler
	store storage.Storage
}

func NewFilesHandler(v *validator.Validator, store storage.Storage) *FilesHandler {
	return &FilesHandler{
		BaseHandler: NewBaseHandler(v),
		store:       store,
	}
}

func (h *FilesHandler) service(c *gin.Context) *services.DocumentService {
	db := h.GetDB(c)
	return services.NewDocumentService(
		repositories.NewDocumentRepository(db),
		repositories.NewChunkRepository(db),
		h.store,
	)
}

// List godoc
// @Summary List the user's documents
// @Tags files
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.DocumentListResponse
// @Router /files [get]
func (h *FilesHandler) List(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	resp, err := h.service(c).List(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Delete a document and its chunks
// @Tags files
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /files/{id} [delete]
func (h *FilesHandler) Delete(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid document id"))
		return
	}

	if err := h.service(c).Delete(c.Request.Context(), userID, documentID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
