package handlers

import (
	"fmt"
	"net/http"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ApplicationHandlers handles license application HTTP requests
type ApplicationHandlers struct {
	applicationSvc services.ApplicationService
	documentSvc    services.DocumentService
}

// NewApplicationHandlers creates a new application handlers instance
func NewApplicationHandlers(applicationSvc services.ApplicationService, documentSvc services.DocumentService) *ApplicationHandlers {
	return &ApplicationHandlers{
		applicationSvc: applicationSvc,
		documentSvc:    documentSvc,
	}
}

// SubmitApplicationRequest represents the application submission payload
type SubmitApplicationRequest struct {
	LicenseType string          `json:"license_type"`
	AgencyID    uuid.UUID       `json:"agency_id"`
	ApplicantID *uuid.UUID      `json:"applicant_id,omitempty"`
	Fee         decimal.Decimal `json:"fee"`
	Notes       string          `json:"notes"`
}

// SubmitApplication godoc
// @Summary Submit a license application
// @Tags applications
// @Accept json
// @Produce json
// @Param request body SubmitApplicationRequest true "Application"
// @Success 201 {object} models.LicenseApplication
// @Failure 400 {object} common.ErrorResponse
// @Router /v1/applications [post]
func (h *ApplicationHandlers) SubmitApplication(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req SubmitApplicationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	// applicants always submit for themselves; staff may file on someone's behalf
	applicantID := who.UserID
	if !who.isApplicant() && req.ApplicantID != nil {
		applicantID = *req.ApplicantID
	}

	app, err := h.applicationSvc.Submit(c.Request().Context(), who.TenantID, &services.SubmitApplicationRequest{
		LicenseType: req.LicenseType,
		AgencyID:    req.AgencyID,
		ApplicantID: applicantID,
		Fee:         req.Fee,
		Notes:       req.Notes,
	})
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, app)
}

// ListApplications godoc
// @Summary List applications
// @Tags applications
// @Produce json
// @Param status query string false "Submitted, Approved or Rejected"
// @Param agency_id query string false "Agency"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /v1/applications [get]
func (h *ApplicationHandlers) ListApplications(c echo.Context) error {
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

	filter := models.ApplicationFilter{
		AgencyID:    agencyID,
		ApplicantID: applicantID,
		Status:      models.ApplicationStatus(c.QueryParam("status")),
		Limit:       limit,
		Offset:      offset,
	}
	apps, err := h.applicationSvc.List(c.Request().Context(), who.TenantID, filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"applications": apps,
		"limit":        limit,
		"offset":       offset,
	})
}

// GetApplication godoc
// @Summary Get an application
// @Tags applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} models.LicenseApplication
// @Failure 404 {object} common.ErrorResponse
// @Router /v1/applications/{id} [get]
func (h *ApplicationHandlers) GetApplication(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	app, err := h.applicationSvc.Get(c.Request().Context(), who.TenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	if who.isApplicant() && app.ApplicantID != who.UserID {
		return common.SendError(c, fmt.Errorf("application %s: %w", id, common.ErrNotFound))
	}
	return c.JSON(http.StatusOK, app)
}

// ReviewRequest carries reviewer notes or a rejection reason
type ReviewRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

// ApproveApplication godoc
// @Summary Approve a submitted application
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body ReviewRequest false "Reviewer notes"
// @Success 200 {object} models.LicenseApplication
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/applications/{id}/approve [put]
func (h *ApplicationHandlers) ApproveApplication(c echo.Context) error {
	return h.review(c, true)
}

// RejectApplication godoc
// @Summary Reject a submitted application
// @Tags applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param request body ReviewRequest false "Rejection reason"
// @Success 200 {object} models.LicenseApplication
// @Failure 409 {object} common.ErrorResponse
// @Router /v1/applications/{id}/reject [put]
func (h *ApplicationHandlers) RejectApplication(c echo.Context) error {
	return h.review(c, false)
}

func (h *ApplicationHandlers) review(c echo.Context, approve bool) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	var app *models.LicenseApplication
	if approve {
		app, err = h.applicationSvc.Approve(c.Request().Context(), who.TenantID, id, who.UserID, req.Notes)
	} else {
		app, err = h.applicationSvc.Reject(c.Request().Context(), who.TenantID, id, who.UserID, req.Reason)
	}
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

// MarkApplicationPaid godoc
// @Summary Record that the application fee was paid
// @Tags applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} models.LicenseApplication
// @Router /v1/applications/{id}/paid [put]
func (h *ApplicationHandlers) MarkApplicationPaid(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	app, err := h.applicationSvc.MarkPaid(c.Request().Context(), who.TenantID, id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

// UploadDocument godoc
// @Summary Attach a supporting document to an application
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Application ID"
// @Param file formData file true "Document"
// @Success 201 {object} services.UploadedDocument
// @Router /v1/applications/{id}/documents [post]
func (h *ApplicationHandlers) UploadDocument(c echo.Context) error {
	who, ok := callerFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	ctx := c.Request().Context()

	if who.isApplicant() {
		app, err := h.applicationSvc.Get(ctx, who.TenantID, id)
		if err != nil {
			return common.SendError(c, err)
		}
		if app.ApplicantID != who.UserID {
			return common.SendError(c, fmt.Errorf("application %s: %w", id, common.ErrNotFound))
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendClientError(c, "Unable to read upload")
	}
	defer src.Close()

	doc, err := h.documentSvc.Upload(ctx, who.TenantID, id, file.Filename, file.Header.Get("Content-Type"), src, file.Size)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}
