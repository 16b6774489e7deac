package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"learnpath/internal/model"
	"learnpath/internal/service"
)

// PathHandler handles learning path endpoints.
type PathHandler struct {
	pathService service.PathService
}

// NewPathHandler creates a new path handler.
func NewPathHandler(pathService service.PathService) *PathHandler {
	return &PathHandler{pathService: pathService}
}

// CreatePathRequest represents a path creation request. Each module entry is
// either a module ID string or a module object to be copied.
type CreatePathRequest struct {
	Title   string            `json:"title" validate:"required"`
	Modules []model.ModuleRef `json:"modules" swaggertype:"array,object"`
}

// UpdatePathRequest represents a partial path update.
type UpdatePathRequest struct {
	Title   *string            `json:"title" validate:"omitempty,min=1"`
	Modules *[]model.ModuleRef `json:"modules" swaggertype:"array,object"`
}

// AddModuleRequest represents a request to append a module to a path.
type AddModuleRequest struct {
	ModuleID string `json:"module_id" validate:"required,uuid"`
}

// ListPaths godoc
// @Summary List paths
// @Description Lists all paths with modules populated. With fields set, modules are reduced to _id and the listed fields.
// @Tags paths
// @Produce json
// @Param fields query string false "Comma separated module fields, e.g. title,description"
// @Success 200 {array} model.PopulatedPath
// @Failure 500 {object} errors.ErrorResponse
// @Router /path [get]
func (h *PathHandler) ListPaths(c echo.Context) error {
	ctx := c.Request().Context()

	if raw := c.QueryParam("fields"); raw != "" {
		summaries, err := h.pathService.ListPathSummaries(ctx, model.ParseModuleFields(raw))
		if err != nil {
			return respondError(err)
		}
		return c.JSON(http.StatusOK, summaries)
	}

	paths, err := h.pathService.ListPaths(ctx)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, paths)
}

// GetPath godoc
// @Summary Get path
// @Tags paths
// @Produce json
// @Param pathId path string true "Path ID"
// @Success 200 {object} model.PopulatedPath
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /path/{pathId} [get]
func (h *PathHandler) GetPath(c echo.Context) error {
	id, err := paramID(c, "pathId")
	if err != nil {
		return err
	}

	path, err := h.pathService.GetPath(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, path)
}

// CreatePath godoc
// @Summary Create path
// @Description Module objects are copied into new modules; module IDs are stored as given.
// @Tags paths
// @Accept json
// @Produce json
// @Param request body CreatePathRequest true "Path data"
// @Success 201 {object} model.PathDocument
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /path [post]
func (h *PathHandler) CreatePath(c echo.Context) error {
	var req CreatePathRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	path, err := h.pathService.CreatePath(c.Request().Context(), service.CreatePathInput{
		Title:   req.Title,
		Modules: req.Modules,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, path)
}

// UpdatePath godoc
// @Summary Update path
// @Description Replaces the given fields. Modules are returned populated when the payload carried module objects.
// @Tags paths
// @Accept json
// @Produce json
// @Param pathId path string true "Path ID"
// @Param request body UpdatePathRequest true "Fields to replace"
// @Success 200 {object} model.PathDocument
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /path/{pathId} [put]
func (h *PathHandler) UpdatePath(c echo.Context) error {
	id, err := paramID(c, "pathId")
	if err != nil {
		return err
	}

	var req UpdatePathRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	path, err := h.pathService.UpdatePath(ctx, id, service.UpdatePathInput{
		Title:   req.Title,
		Modules: req.Modules,
	})
	if err != nil {
		return respondError(err)
	}

	if req.Modules != nil && model.HasEmbedded(*req.Modules) {
		populated, err := h.pathService.GetPath(ctx, id)
		if err != nil {
			return respondError(err)
		}
		return c.JSON(http.StatusOK, populated)
	}
	return c.JSON(http.StatusOK, path)
}

// DeletePath godoc
// @Summary Delete path
// @Description Modules referenced by the path are kept.
// @Tags paths
// @Param pathId path string true "Path ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Router /path/{pathId} [delete]
func (h *PathHandler) DeletePath(c echo.Context) error {
	id, err := paramID(c, "pathId")
	if err != nil {
		return err
	}

	if err := h.pathService.DeletePath(c.Request().Context(), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddModule godoc
// @Summary Append module to path
// @Tags paths
// @Accept json
// @Produce json
// @Param pathId path string true "Path ID"
// @Param request body AddModuleRequest true "Module to append"
// @Success 200 {object} model.PathDocument
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /path/{pathId}/modules [post]
func (h *PathHandler) AddModule(c echo.Context) error {
	pathID, err := paramID(c, "pathId")
	if err != nil {
		return err
	}

	var req AddModuleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	path, err := h.pathService.AddModule(c.Request().Context(), pathID, uuid.MustParse(req.ModuleID))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, path)
}
