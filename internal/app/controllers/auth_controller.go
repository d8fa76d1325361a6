package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campusrecords/internal/app/models/dto"
	"github.com/yigit/campusrecords/internal/app/services"
	"github.com/yigit/campusrecords/internal/middleware"
	"github.com/yigit/campusrecords/internal/pkg/filestorage"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService services.AuthService
	storage     filestorage.BlobStorage
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, storage filestorage.BlobStorage, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		storage:     storage,
		logger:      logger.With().Str("controller", "auth").Logger(),
	}
}

// Register handles account registration
// @Summary Register a new account
// @Description Creates an account with role student or faculty, its role record and an empty profile. Students get a roll number and their department subjects.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration information"
// @Success 201 {object} dto.APIResponse{data=dto.TokenResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or email/username taken"
// @Failure 409 {object} dto.ErrorResponse "Conflicting record"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	tokens, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("username", req.Username).Str("role", req.Role).Msg("Account registered")
	respond(ctx, http.StatusCreated, tokens, "Registration successful")
}

// Login handles account login
// @Summary Log in
// @Description Authenticates by username and password and returns a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials or disabled account"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	tokens, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Str("username", req.Username).Msg("Failed login attempt")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, tokens, "Login successful")
}

// RefreshToken rotates a refresh token
// @Summary Refresh tokens
// @Description Exchanges a refresh token for a new token pair. The old refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Tokens refreshed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unknown, expired or revoked refresh token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	tokens, err := c.authService.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, tokens, "Tokens refreshed")
}

// Logout revokes a refresh token
// @Summary Log out
// @Description Revokes the given refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unknown refresh token"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBindingError(ctx, err)
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), req.RefreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Logged out")
}

// Me returns the authenticated account
// @Summary Current account
// @Description Returns the authenticated account together with its student or faculty record
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Current account"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account no longer exists"
// @Router /me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	accountID, ok := currentAccountID(ctx)
	if !ok {
		return
	}

	account, binding, err := c.authService.Me(ctx.Request.Context(), accountID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.NewAccountResponse(account, binding, c.storage.URLFor), "")
}
