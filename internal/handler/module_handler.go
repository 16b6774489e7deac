package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"learnpath/internal/service"
)

// ModuleHandler handles module endpoints.
type ModuleHandler struct {
	moduleService service.ModuleService
}

// NewModuleHandler creates a new module handler.
func NewModuleHandler(moduleService service.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService}
}

// CreateModuleRequest represents a module creation request. When PathID is
// set the module is appended to that path.
type CreateModuleRequest struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Resources   datatypes.JSON `json:"resources" swaggertype:"object"`
	PathID      string         `json:"path_id" validate:"omitempty,uuid"`
}

// UpdateModuleRequest represents a partial module update.
type UpdateModuleRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=1"`
	Description *string         `json:"description"`
	Content     *string         `json:"content"`
	Resources   *datatypes.JSON `json:"resources" swaggertype:"object"`
}

// ListModules godoc
// @Summary List modules
// @Tags modules
// @Produce json
// @Success 200 {array} model.Module
// @Failure 500 {object} errors.ErrorResponse
// @Router /module [get]
func (h *ModuleHandler) ListModules(c echo.Context) error {
	modules, err := h.moduleService.ListModules(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, modules)
}

// GetModule godoc
// @Summary Get module
// @Tags modules
// @Produce json
// @Param moduleId path string true "Module ID"
// @Success 200 {object} model.Module
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /module/{moduleId} [get]
func (h *ModuleHandler) GetModule(c echo.Context) error {
	id, err := paramID(c, "moduleId")
	if err != nil {
		return err
	}

	module, err := h.moduleService.GetModule(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, module)
}

// CreateModule godoc
// @Summary Create module
// @Tags modules
// @Accept json
// @Produce json
// @Param request body CreateModuleRequest true "Module data"
// @Success 201 {object} model.Module
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /module [post]
func (h *ModuleHandler) CreateModule(c echo.Context) error {
	var req CreateModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.CreateModuleInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Resources:   req.Resources,
	}
	if req.PathID != "" {
		pathID := uuid.MustParse(req.PathID)
		in.PathID = &pathID
	}

	module, err := h.moduleService.CreateModule(c.Request().Context(), in)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, module)
}

// UpdateModule godoc
// @Summary Update module
// @Tags modules
// @Accept json
// @Produce json
// @Param moduleId path string true "Module ID"
// @Param request body UpdateModuleRequest true "Fields to replace"
// @Success 200 {object} model.Module
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /module/{moduleId} [put]
func (h *ModuleHandler) UpdateModule(c echo.Context) error {
	id, err := paramID(c, "moduleId")
	if err != nil {
		return err
	}

	var req UpdateModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	module, err := h.moduleService.UpdateModule(c.Request().Context(), id, service.UpdateModuleInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Resources:   req.Resources,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, module)
}

// DeleteModule godoc
// @Summary Delete module
// @Description Paths that reference the module keep the reference; it populates as null.
// @Tags modules
// @Param moduleId path string true "Module ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Router /module/{moduleId} [delete]
func (h *ModuleHandler) DeleteModule(c echo.Context) error {
	id, err := paramID(c, "moduleId")
	if err != nil {
		return err
	}

	if err := h.moduleService.DeleteModule(c.Request().Context(), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
