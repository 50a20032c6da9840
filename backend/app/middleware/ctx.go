package middleware

import (
	"context"

	jwtutil "homeguard/backend/app/jwt"
)

func GetClaims(ctx context.Context) *jwtutil.Claims {
	if v := ctx.Value(ClaimsKey); v != nil {
		if c, ok := v.(*jwtutil.Claims); ok {
			return c
		}
	}
	return nil
}

// Actor names the authenticated caller for audit entries; unauthenticated
// paths (startup sync, importer) pass their own label.
func Actor(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.Username
	}
	return "anonymous"
}
