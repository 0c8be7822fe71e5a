// Package besteffort marks side effects whose failure must never fail the
// caller. Errors and panics are logged as automation failures and dropped.
package besteffort

import (
	"context"
	"fmt"

	"salon_booking_backend/platform/logger"
)

// Run executes fn and suppresses any error or panic after logging it.
// It reports whether fn succeeded.
func Run(ctx context.Context, log *logger.Logger, operation string, fn func(context.Context) error, attrs ...any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.WithContext(ctx).AutomationFailure(operation, fmt.Errorf("panic: %v", r), attrs...)
			ok = false
		}
	}()

	if err := fn(ctx); err != nil {
		log.WithContext(ctx).AutomationFailure(operation, err, attrs...)
		return false
	}
	return true
}
