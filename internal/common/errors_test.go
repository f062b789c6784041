package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("license: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"invalid state", fmt.Errorf("approve: %w", ErrInvalidState), http.StatusConflict, "INVALID_STATE"},
		{"conflict", ErrConflict, http.StatusConflict, "CONFLICT"},
		{"validation", ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid operation", ErrInvalidOperation, http.StatusBadRequest, "INVALID_OPERATION"},
		{"transport", fmt.Errorf("send: %w", ErrTransport), http.StatusBadGateway, "TRANSPORT_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := HTTPStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	userID, tenantID := uuid.New(), uuid.New()
	ctx := WithIdentity(context.Background(), userID, tenantID, "AgencyStaff")

	gotTenant, ok := GetTenantIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, tenantID, gotTenant)

	gotUser, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID, gotUser)

	role, ok := GetRoleFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "AgencyStaff", role)
}

func TestGetTenantIDFromContext_Missing(t *testing.T) {
	_, ok := GetTenantIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), uuid.New(), uuid.Nil, "Applicant")
	_, ok = GetTenantIDFromContext(ctx)
	assert.False(t, ok)
}

func TestValidatePaginationParams(t *testing.T) {
	limit, offset, err := ValidatePaginationParams(0, -5)
	assert.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _, err = ValidatePaginationParams(5000, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1000, limit)

	_, _, err = ValidatePaginationParams(10, 2000000)
	assert.Error(t, err)
}
