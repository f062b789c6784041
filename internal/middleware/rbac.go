package middleware

import (
	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when the caller's role is one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if _, ok := allowed[role]; !ok {
				return common.SendForbiddenError(c)
			}
			return next(c)
		}
	}
}

// Staff covers the roles that review and issue on behalf of an agency.
var Staff = []models.Role{models.RoleAdministrator, models.RoleAgencyStaff}
