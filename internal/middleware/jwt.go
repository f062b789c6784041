package middleware

import (
	"context"
	"fmt"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// JWTCustomClaims are the claims the portal expects on bearer tokens. Tokens
// are issued elsewhere; this service only verifies them.
type JWTCustomClaims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig builds the echo-jwt configuration. When keyFunc is set tokens are
// verified against it (JWKS), otherwise against the HMAC secret.
func JWTConfig(secret string, keyFunc jwt.Keyfunc) echojwt.Config {
	cfg := echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	}
	if keyFunc != nil {
		cfg.KeyFunc = keyFunc
	} else {
		cfg.SigningKey = []byte(secret)
	}
	return cfg
}

// NewJWKS fetches the key set at url and keeps it refreshed in the background.
// Call EndBackground on shutdown.
func NewJWKS(url string, log zerolog.Logger) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Warn().Err(err).Str("jwks_url", url).Msg("jwks refresh failed")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %s: %w", url, err)
	}
	return jwks, nil
}

// TenantLookup is used to confirm the tenant named in a token is still active.
type TenantLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// ResolveTenant copies the caller's identity from the verified token into the
// request context. Requests without a usable tenant are rejected with 401.
func ResolveTenant(tenants TenantLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return common.SendUnauthorizedError(c)
			}
			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil || tenantID == uuid.Nil {
				return common.SendUnauthorizedError(c)
			}
			role := models.Role(claims.Role)
			if !role.Valid() {
				return common.SendUnauthorizedError(c)
			}

			ctx := c.Request().Context()
			if tenants != nil {
				tenant, err := tenants.GetByID(ctx, tenantID)
				if err != nil || !tenant.IsActive {
					return common.SendUnauthorizedError(c)
				}
			}

			ctx = common.WithIdentity(ctx, userID, tenantID, string(role))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
