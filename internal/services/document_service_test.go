package services

import (
	"context"
	"strings"
	"testing"

	"licenseportal/internal/common"
	"licenseportal/internal/models"
	"licenseportal/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_UploadUsesTenantPrefix(t *testing.T) {
	repos, store := testhelpers.NewMockStore()
	objects := &testhelpers.MockObjectStore{}
	svc := NewDocumentService(objects, "license-documents", store)

	ctx := context.Background()
	tenantID, appID := uuid.New(), uuid.New()
	repos.Applications.On("GetByID", ctx, tenantID, appID).
		Return(&models.LicenseApplication{Base: models.Base{ID: appID, TenantID: tenantID}}, nil)

	var key string
	objects.On("Upload", ctx, "license-documents", mock.AnythingOfType("string"), "application/pdf", mock.Anything, int64(11)).
		Return(nil).Run(func(args mock.Arguments) { key = args.String(2) })
	objects.On("GetPresignedURL", ctx, "license-documents", mock.AnythingOfType("string"), documentURLTTL).
		Return("https://minio.local/signed", nil)

	doc, err := svc.Upload(ctx, tenantID, appID, `C:\scans\floor-plan.pdf`, "application/pdf", strings.NewReader("hello world"), 11)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, tenantID.String()+"/applications/"+appID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, "-floor-plan.pdf"))
	assert.Equal(t, key, doc.ObjectKey)
	assert.Equal(t, "https://minio.local/signed", doc.URL)
	objects.AssertExpectations(t)
	repos.AssertExpectations(t)
}

func TestDocumentService_ApplicationInOtherTenant(t *testing.T) {
	repos, store := testhelpers.NewMockStore()
	objects := &testhelpers.MockObjectStore{}
	svc := NewDocumentService(objects, "license-documents", store)

	ctx := context.Background()
	tenantID, appID := uuid.New(), uuid.New()
	repos.Applications.On("GetByID", ctx, tenantID, appID).Return(nil, common.ErrNotFound)

	_, err := svc.Upload(ctx, tenantID, appID, "scan.pdf", "", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
	objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_RejectsEmptyFile(t *testing.T) {
	_, store := testhelpers.NewMockStore()
	svc := NewDocumentService(&testhelpers.MockObjectStore{}, "b", store)

	_, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), "scan.pdf", "", strings.NewReader(""), 0)
	assert.ErrorIs(t, err, common.ErrValidation)
}
