package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/simhub/backend/pkg/token"
)

// JWTAuth verifies the access token and forwards the authenticated principal
// to handlers via request headers. Client-supplied values for these headers
// are overwritten unconditionally.
func JWTAuth(issuer *token.Issuer, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, err := issuer.VerifyAccess(tokenString)
			if err != nil {
				logger.Warn("invalid access token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set("X-User-ID", claims.Subject)
			ctx.Request.Header.Set("X-Session-ID", claims.SessionID)
			ctx.Request.Header.Set("X-User-Roles", strings.Join(claims.Roles, ","))

			next(ctx)
		}
	}
}

// RequireRole gates a handler behind a role forwarded by JWTAuth.
func RequireRole(role string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			roles := strings.Split(string(ctx.Request.Header.Peek("X-User-Roles")), ",")
			for _, r := range roles {
				if r == role {
					next(ctx)
					return
				}
			}
			ctx.SetStatusCode(fasthttp.StatusForbidden)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	if cookie := string(ctx.Request.Header.Cookie("accessToken")); cookie != "" {
		return cookie
	}
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
