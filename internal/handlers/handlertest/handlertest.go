// Package handlertest builds humatest APIs that act as an authenticated
// caller.
package handlertest

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"

	"github.com/carson-networks/bank-server/internal/auth"
)

// NewAPI returns a test API whose requests carry identity. A nil identity
// leaves requests unauthenticated.
func NewAPI(t *testing.T, identity *auth.Identity) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	if identity != nil {
		api.UseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
			next(huma.WithContext(ctx, auth.WithIdentity(ctx.Context(), identity)))
		})
	}
	return api
}
