package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brainbin/internal/config"
	"brainbin/internal/email"
	"brainbin/internal/middleware"
	"brainbin/internal/repositories"
	"brainbin/internal/services"
	"brainbin/internal/services/dto"
	"brainbin/internal/validator"
)

type AuthHandler struct {
	*BaseHandler
	mailer email.Provider
	cfg    *config.Config
}

func NewAuthHandler(v *validator.Validator, mailer email.Provider, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(v),
		mailer:      mailer,
		cfg:         cfg,
	}
}

func (h *AuthHandler) service(c *gin.Context) *services.AuthService {
	return services.NewAuthService(repositories.NewUserRepository(h.GetDB(c)), h.mailer, h.cfg)
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	user, err := h.service(c).Register(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Exchange credentials for tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	tokens, err := h.service(c).Login(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	tokens, err := h.service(c).Refresh(req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Logout godoc
// @Summary Revoke refresh tokens
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	var req dto.LogoutRequest
	_ = c.ShouldBind(&req) // body is optional

	if err := h.service(c).Logout(userID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// VerifyEmail godoc
// @Summary Confirm an email address
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /auth/verify [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.service(c).VerifyEmail(c.Query("token")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	user, err := h.service(c).Me(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/verify", h.VerifyEmail)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(h.cfg.JWT.Secret))
		{
			protected.POST("/logout", h.Logout)
			protected.GET("/me", h.Me)
		}
	}
}
