package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"tasktracker/internal/auth"
	dom "tasktracker/internal/domain"
	"tasktracker/internal/dto"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// AuthHandler handles register and login.
type AuthHandler struct {
	users  *service.UserService
	tokens TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(users *service.UserService, tokens TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "New user"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			internalError(c, h.logger, "register failed", err)
		}
		return
	}
	resp := dto.RegisterResponse{Message: "user registered", User: userToResponse(user)}
	token, err := h.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		// The account exists at this point; the client logs in to get a token.
		if h.logger != nil {
			h.logger.Error("issue token after register failed",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		resp.Message = "user registered, log in to get a token"
		c.JSON(http.StatusCreated, resp)
		return
	}
	resp.Token = token
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.TokenResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			internalError(c, h.logger, "login failed", err)
		}
		return
	}
	token, err := h.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		internalError(c, h.logger, "issue token failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

func userToResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}
