package handlers

import (
	"net/http"

	"licenseportal/internal/common"
	"licenseportal/internal/services"

	"github.com/labstack/echo/v4"
)

// DirectoryHandlers manage the agencies and users of the caller's tenant
type DirectoryHandlers struct {
	agencySvc services.AgencyService
	userSvc   services.UserService
}

func NewDirectoryHandlers(agencySvc services.AgencyService, userSvc services.UserService) *DirectoryHandlers {
	return &DirectoryHandlers{agencySvc: agencySvc, userSvc: userSvc}
}

// ListAgencies godoc
// @Summary List agencies
// @Tags directory
// @Produce json
// @Success 200 {array} models.Agency
// @Router /v1/agencies [get]
func (h *DirectoryHandlers) ListAgencies(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	agencies, err := h.agencySvc.List(c.Request().Context(), who.TenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, agencies)
}

// CreateAgency godoc
// @Summary Create an agency
// @Tags directory
// @Accept json
// @Produce json
// @Param request body services.CreateAgencyRequest true "Agency"
// @Success 201 {object} models.Agency
// @Router /v1/agencies [post]
func (h *DirectoryHandlers) CreateAgency(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	var req services.CreateAgencyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	agency, err := h.agencySvc.Create(c.Request().Context(), who.TenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, agency)
}

// RegisterUser godoc
// @Summary Register a user in the tenant
// @Tags directory
// @Accept json
// @Produce json
// @Param request body services.RegisterUserRequest true "User"
// @Success 201 {object} models.User
// @Router /v1/users [post]
func (h *DirectoryHandlers) RegisterUser(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	var req services.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	user, err := h.userSvc.Register(c.Request().Context(), who.TenantID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// ListUsers godoc
// @Summary List users in the tenant
// @Tags directory
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /v1/users [get]
func (h *DirectoryHandlers) ListUsers(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}
	users, err := h.userSvc.List(c.Request().Context(), who.TenantID, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

// DeactivateUser godoc
// @Summary Deactivate a user
// @Tags directory
// @Param id path string true "User ID"
// @Success 204
// @Router /v1/users/{id} [delete]
func (h *DirectoryHandlers) DeactivateUser(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	if err := h.userSvc.Deactivate(c.Request().Context(), who.TenantID, id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
