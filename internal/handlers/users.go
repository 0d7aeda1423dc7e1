package handlers

import (
	"log/slog"
	"net/http"

	"tasktracker/internal/dto"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "list users failed", err)
		return
	}
	out := make([]dto.UserResponse, len(list))
	for i := range list {
		out[i] = userToResponse(list[i])
	}
	c.JSON(http.StatusOK, out)
}
