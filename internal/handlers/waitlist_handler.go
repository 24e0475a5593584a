package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainbin/internal/email"
	"brainbin/internal/repositories"
	"brainbin/internal/services"
	"brainbin/internal/services/dto"
	"brainbin/internal/validator"
)

type WaitlistHandler struct {
	*BaseHandler
	mailer email.Provider
}

func NewWaitlistHandler(v *validator.Validator, mailer email.Provider) *WaitlistHandler {
	return &WaitlistHandler{
		BaseHandler: NewBaseHandler(v),
		mailer:      mailer,
	}
}

func (h *WaitlistHandler) service(c *gin.Context) *services.WaitlistService {
	return services.NewWaitlistService(repositories.NewWaitlistRepository(h.GetDB(c)), h.mailer)
}

// Join godoc
// @Summary Join the waitlist
// @Tags waitlist
// @Accept json
// @Produce json
// @Param request body dto.WaitlistRequest true "Email"
// @Success 201 {object} dto.WaitlistResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /waitlist [post]
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req dto.WaitlistRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.service(c).Join(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
