package testhelpers

import (
	"context"
	"os"
	"testing"

	"licenseportal/internal/models"
	"licenseportal/internal/repositories"
	"licenseportal/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Store   *repositories.Store
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and migrates it. The test is
// skipped when the variable is unset.
func SetupTestDB(t *testing.T, clock clockwork.Clock) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	log := zerolog.Nop()
	if err := database.Migrate(dsn, log); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	pool, err := database.NewPool(context.Background(), dsn, log)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool:  pool,
		Store: repositories.NewStore(pool, clock),
		Cleanup: func() {
			pool.Close()
		},
	}
}

// SetupTestTenant creates an active tenant with a unique domain
func SetupTestTenant(t *testing.T, db *TestDB) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		Name:     "Test Tenant",
		Domain:   uuid.NewString()[:8] + ".licensing.test",
		IsActive: true,
	}
	if err := db.Store.Tenants.Create(context.Background(), tenant); err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}
	return tenant
}

// SetupTestAgency creates an agency with the given code in the tenant
func SetupTestAgency(t *testing.T, db *TestDB, tenantID uuid.UUID, code string) *models.Agency {
	t.Helper()

	agency := &models.Agency{Name: "Department of " + code, Code: code, IsActive: true}
	if err := db.Store.Agencies.Create(context.Background(), tenantID, agency); err != nil {
		t.Fatalf("Failed to create test agency: %v", err)
	}
	return agency
}

// SetupTestUser creates an active user. The password hash is a placeholder
// since tests never authenticate.
func SetupTestUser(t *testing.T, db *TestDB, tenantID uuid.UUID, role models.Role, agencyID *uuid.UUID) *models.User {
	t.Helper()

	user := &models.User{
		Email:        uuid.NewString()[:8] + "@licensing.test",
		PasswordHash: "not-a-hash",
		FirstName:    "Test",
		LastName:     string(role),
		Role:         role,
		AgencyID:     agencyID,
		IsActive:     true,
	}
	if err := db.Store.Users.Create(context.Background(), tenantID, user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}
