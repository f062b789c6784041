package handlers

import (
	"context"
	"errors"
	"net/http"

	"licenseportal/internal/common"
	"licenseportal/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobRunner is satisfied by background.JobScheduler
type JobRunner interface {
	RunNow(ctx context.Context, name string) (*background.RunStatus, error)
	JobStatus() []background.JobInfo
}

type JobHandlers struct {
	runner JobRunner
}

func NewJobHandlers(runner JobRunner) *JobHandlers {
	return &JobHandlers{runner: runner}
}

// ListJobs godoc
// @Summary Scheduled scanner runs and their last outcome
// @Tags jobs
// @Produce json
// @Success 200 {array} background.JobInfo
// @Router /v1/jobs [get]
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.runner.JobStatus())
}

// RunJob godoc
// @Summary Trigger a scanner run now
// @Tags jobs
// @Produce json
// @Param name path string true "check-expiring-licenses or auto-renew-licenses"
// @Success 200 {object} background.RunStatus
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/jobs/{name}/run [post]
func (h *JobHandlers) RunJob(c echo.Context) error {
	status, err := h.runner.RunNow(c.Request().Context(), c.Param("name"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, status)
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrConflict):
		return common.SendError(c, err)
	default:
		// the run itself failed after its retries; report the outcome
		return c.JSON(http.StatusBadGateway, status)
	}
}
