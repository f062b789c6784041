package handlers

import (
	"fmt"
	"net/http"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/internal/services"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
)

// LicenseHandlers handles license HTTP requests
type LicenseHandlers struct {
	licenseSvc services.LicenseService
	clock      clockwork.Clock
}

func NewLicenseHandlers(licenseSvc services.LicenseService, clock clockwork.Clock) *LicenseHandlers {
	return &LicenseHandlers{licenseSvc: licenseSvc, clock: clock}
}

func (h *LicenseHandlers) view(l *models.License) models.LicenseView {
	return l.View(h.clock.Now())
}

// IssueLicenseRequest names the approved application to issue from
type IssueLicenseRequest struct {
	ApplicationID uuid.UUID `json:"application_id"`
}

// IssueLicense godoc
// @Summary Issue a license from an approved application
// @Tags licenses
// @Accept json
// @Produce json
// @Param request body IssueLicenseRequest true "Application"
// @Success 201 {object} models.LicenseView
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/licenses [post]
func (h *LicenseHandlers) IssueLicense(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	var req IssueLicenseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.ApplicationID == uuid.Nil {
		return common.SendValidationError(c, "application_id", "application_id is required")
	}

	license, err := h.licenseSvc.Issue(c.Request().Context(), who.TenantID, req.ApplicationID, who.UserID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, h.view(license))
}

// ListLicenses godoc
// @Summary List licenses
// @Tags licenses
// @Produce json
// @Param status query string false "Active, Expired or Renewed"
// @Param agency_id query string false "Agency"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /v1/licenses [get]
func (h *LicenseHandlers) ListLicenses(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset, err := common.PaginationFromQuery(c)
	if err != nil {
		return common.SendValidationError(c, "offset", err.Error())
	}
	agencyID, err := queryUUID(c, "agency_id")
	if err != nil {
		return common.SendValidationError(c, "agency_id", err.Error())
	}
	applicantID, err := queryUUID(c, "applicant_id")
	if err != nil {
		return common.SendValidationError(c, "applicant_id", err.Error())
	}
	if who.isApplicant() {
		applicantID = &who.UserID
	}

	licenses, err := h.licenseSvc.List(c.Request().Context(), who.TenantID, models.LicenseFilter{
		AgencyID:    agencyID,
		ApplicantID: applicantID,
		Status:      models.LicenseStatus(c.QueryParam("status")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return common.SendError(c, err)
	}
	views := make([]models.LicenseView, 0, len(licenses))
	for _, l := range licenses {
		views = append(views, h.view(l))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"licenses": views,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetLicense godoc
// @Summary Get a license
// @Tags licenses
// @Produce json
// @Param id path string true "License ID"
// @Success 200 {object} models.LicenseView
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/licenses/{id} [get]
func (h *LicenseHandlers) GetLicense(c echo.Context) error {
	_, license, err := h.visibleLicense(c)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(license))
}

// RenewLicenseRequest is the renewal payload
type RenewLicenseRequest struct {
	Months int    `json:"months"`
	Notes  string `json:"notes"`
}

// RenewLicense godoc
// @Summary Renew an active license
// @Tags licenses
// @Accept json
// @Produce json
// @Param id path string true "License ID"
// @Param request body RenewLicenseRequest true "Renewal"
// @Success 200 {object} models.LicenseView
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/licenses/{id}/renew [put]
func (h *LicenseHandlers) RenewLicense(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req RenewLicenseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	license, err := h.licenseSvc.Renew(c.Request().Context(), who.TenantID, id, req.Months, req.Notes)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(license))
}

// GetCertificate godoc
// @Summary Download the license certificate
// @Tags licenses
// @Produce application/pdf
// @Param id path string true "License ID"
// @Success 200 {file} binary
// @Router /v1/licenses/{id}/certificate [get]
func (h *LicenseHandlers) GetCertificate(c echo.Context) error {
	who, license, err := h.visibleLicense(c)
	if err != nil {
		return sendError(c, err)
	}
	pdf, err := h.licenseSvc.Certificate(c.Request().Context(), who.TenantID, license.ID)
	if err != nil {
		return common.SendError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", license.LicenseNumber+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// visibleLicense loads the :id license. Applicants only see their own.
func (h *LicenseHandlers) visibleLicense(c echo.Context) (caller, *models.License, error) {
	who, ok := callerFrom(c)
	if !ok {
		return caller{}, nil, errNoIdentity
	}
	id, err := pathID(c, "id")
	if err != nil {
		return caller{}, nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	license, err := h.licenseSvc.Get(c.Request().Context(), who.TenantID, id)
	if err != nil {
		return caller{}, nil, err
	}
	if who.isApplicant() && license.ApplicantID != who.UserID {
		return caller{}, nil, fmt.Errorf("license %s: %w", id, common.ErrNotFound)
	}
	return who, license, nil
}
