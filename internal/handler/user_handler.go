package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"learnpath/internal/auth"
	apperrors "learnpath/internal/errors"
	"learnpath/internal/model"
	"learnpath/internal/service"
)

// UserHandler handles user management endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents a user creation request.
type CreateUserRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Name     string     `json:"name" validate:"required"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=standard admin"`
}

// UpdateUserRequest represents a partial user update.
type UpdateUserRequest struct {
	Name *string     `json:"name" validate:"omitempty,min=1"`
	Role *model.Role `json:"role" validate:"omitempty,oneof=standard admin"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /user [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/{userId} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create user
// @Description Any signed-in user may create standard users; only admins may create admins.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /user [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var actorRole model.Role
	if claims, ok := auth.ClaimsFromContext(c); ok {
		actorRole = claims.Role
	}

	user, err := h.userService.CreateUser(c.Request().Context(), actorRole, service.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to replace"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/{userId} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/{userId} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}

	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return respondError(apperrors.ErrForbidden)
	}

	if err := h.userService.DeleteUser(c.Request().Context(), claims.UserID, id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
