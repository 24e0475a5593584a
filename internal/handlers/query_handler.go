package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brainbin/internal/llm"
	"brainbin/internal/repositories"
	"brainbin/internal/services"
	"brainbin/internal/services/dto"
	"brainbin/internal/validator"
)

type QueryHandler struct {
	*BaseHandler
	inference *services.Inference
	answerer  llm.Answerer
}

func NewQueryHandler(v *validator.Validator, inference *services.Inference, answerer llm.Answerer) *QueryHandler {
	return &QueryHandler{
		BaseHandler: NewBaseHandler(v),
		inference:   inference,
		answerer:    answerer,
	}
}

func (h *QueryHandler) service(c *gin.Context) *services.QueryService {
	db := h.GetDB(c)
	return services.NewQueryService(
		repositories.NewDocumentRepository(db),
		repositories.NewChunkRepository(db),
		repositories.NewChatRepository(db),
		h.inference,
		h.answerer,
	)
}

// Query godoc
// @Summary Ask a question over the knowledge base
// @Tags query
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Question"
// @Success 200 {object} dto.QueryResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 429 {object} apperrors.ErrorResponse
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /query [post]
func (h *QueryHandler) Query(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	var req dto.QueryRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.service(c).Query(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ClearContext godoc
// @Summary Clear conversation history
// @Tags query
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /query/context [delete]
func (h *QueryHandler) ClearContext(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	if err := h.service(c).ClearContext(userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation context cleared"})
}

// History godoc
// @Summary Recent question/answer history
// @Tags query
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max entries (default 20)"
// @Success 200 {object} map[string]interface{}
// @Router /query/history [get]
func (h *QueryHandler) History(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.service(c).History(userID, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries, "count": len(entries)})
}
