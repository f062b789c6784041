package handlers

import (
	"context"
	"net/http"

	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StatsProvider is satisfied by analytics.DashboardService
type StatsProvider interface {
	GetStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error)
}

type DashboardHandlers struct {
	stats StatsProvider
}

func NewDashboardHandlers(stats StatsProvider) *DashboardHandlers {
	return &DashboardHandlers{stats: stats}
}

// GetDashboard godoc
// @Summary Tenant dashboard counts
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Router /v1/dashboard [get]
func (h *DashboardHandlers) GetDashboard(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	stats, err := h.stats.GetStats(c.Request().Context(), who.TenantID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
