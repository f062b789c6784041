package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"licenseportal/internal/caching"
	"licenseportal/internal/common"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxNumberAttempts bounds regeneration of application and license numbers
// after a unique-constraint collision.
const maxNumberAttempts = 5

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs struct tag validation and folds failures into ErrValidation
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// randomSuffix returns a number in [lo, hi]
type randomSuffix func(lo, hi int) int

func defaultRandomSuffix(lo, hi int) int {
	return lo + rand.IntN(hi-lo+1)
}

// invalidateTenant drops cached projections after a write. Failures only cost
// freshness, so they are logged and swallowed.
func invalidateTenant(ctx context.Context, cache caching.CacheService, log zerolog.Logger, tenantID uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateTenantCache(ctx, tenantID); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("cache invalidation failed")
	}
}
