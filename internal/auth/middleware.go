package auth

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/bank-server/internal/logging"
)

// SecurityScheme is the name operations use to require a bearer token.
// Listing the "admin" scope additionally requires the admin role.
const SecurityScheme = "bearer"

// Middleware authenticates operations that declare SecurityScheme. Others
// pass through untouched.
func Middleware(api huma.API, resolver *JWTResolver) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		required, adminOnly := requirements(ctx.Operation())
		if !required {
			next(ctx)
			return
		}

		token, ok := bearerToken(ctx.Header("Authorization"))
		if !ok {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")
			return
		}
		identity, err := resolver.Resolve(token)
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if adminOnly && !identity.Admin {
			_ = huma.WriteErr(api, ctx, http.StatusForbidden, "admin role required")
			return
		}

		logging.GetLogData(ctx.Context()).AddData("caller", identity.AccountID.String())
		next(huma.WithContext(ctx, WithIdentity(ctx.Context(), identity)))
	}
}

func requirements(op *huma.Operation) (required, adminOnly bool) {
	if op == nil {
		return false, false
	}
	for _, scheme := range op.Security {
		scopes, ok := scheme[SecurityScheme]
		if !ok {
			continue
		}
		required = true
		for _, scope := range scopes {
			if scope == RoleAdmin {
				adminOnly = true
			}
		}
	}
	return required, adminOnly
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
