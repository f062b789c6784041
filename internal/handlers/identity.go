package handlers

import (
	"errors"

	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var errNoIdentity = errors.New("request has no caller identity")

// sendError writes err using the shared error envelope.
func sendError(c echo.Context, err error) error {
	if errors.Is(err, errNoIdentity) {
		return common.SendUnauthorizedError(c)
	}
	return common.SendError(c, err)
}

// caller is the identity ResolveTenant placed on the request context.
type caller struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     models.Role
}

func (c caller) isApplicant() bool {
	return c.Role == models.RoleApplicant
}

// callerFrom reads the caller once; handlers pass the tenant explicitly from here on.
func callerFrom(c echo.Context) (caller, bool) {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return caller{}, false
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return caller{}, false
	}
	role, _ := common.GetRoleFromContext(ctx)
	return caller{UserID: userID, TenantID: tenantID, Role: models.Role(role)}, true
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(name), name)
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(raw, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
