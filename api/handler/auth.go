package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/simhub/backend/api/transport"
	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/pkg/httpcontext"
	"github.com/simhub/backend/pkg/token"
	"github.com/simhub/backend/repository"
	authUC "github.com/simhub/backend/usecase/auth"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	users  repository.UserRepository
	issuer *token.Issuer
	secure bool
}

func NewAuthHandler(
	uc *authUC.UseCase,
	users repository.UserRepository,
	issuer *token.Issuer,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
	secureCookies bool,
) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		users:       users,
		issuer:      issuer,
		secure:      secureCookies,
	}
}

// @Summary Register a new account
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Password == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pair, err := h.uc.Register(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setTokenCookies(ctx, pair)
	h.respondSuccess(ctx, http.StatusCreated, pair)
}

// @Summary Log in with email and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Password == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	// An unknown email responds exactly like a wrong password.
	user, err := h.users.GetByEmail(stdCtx, req.Email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			h.respondError(ctx, domain.ErrInvalidCredentials)
			return
		}
		h.respondError(ctx, err)
		return
	}

	pair, err := h.uc.Login(stdCtx, user, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setTokenCookies(ctx, pair)
	h.respondSuccess(ctx, http.StatusOK, pair)
}

// @Summary End the current session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	sessionID := h.sessionID(ctx)
	if sessionID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, sessionID); err != nil {
		h.respondError(ctx, err)
		return
	}

	h.clearTokenCookies(ctx)
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"should_clear_cookie": true})
}

// @Summary Rotate the token pair for an active session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	raw := refreshTokenFromRequest(ctx)
	if raw == "" {
		h.respondError(ctx, domain.ErrInvalidRefreshToken)
		return
	}

	claims, err := h.issuer.VerifyRefresh(raw)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pair, err := h.uc.RefreshTokens(stdCtx, claims.SessionID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setTokenCookies(ctx, pair)
	h.respondSuccess(ctx, http.StatusOK, pair)
}

func (h *AuthHandler) setTokenCookies(ctx *fasthttp.RequestCtx, pair token.Pair) {
	h.setCookie(ctx, accessCookie, pair.AccessToken, h.issuer.AccessLifetime())
	h.setCookie(ctx, refreshCookie, pair.RefreshToken, h.issuer.RefreshLifetime())
}

func (h *AuthHandler) clearTokenCookies(ctx *fasthttp.RequestCtx) {
	h.setCookie(ctx, accessCookie, "", -time.Hour)
	h.setCookie(ctx, refreshCookie, "", -time.Hour)
}

func (h *AuthHandler) setCookie(ctx *fasthttp.RequestCtx, name, value string, ttl time.Duration) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(name)
	cookie.SetValue(value)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteStrictMode)
	cookie.SetExpire(time.Now().Add(ttl))
	ctx.Response.Header.SetCookie(cookie)
}

func refreshTokenFromRequest(ctx *fasthttp.RequestCtx) string {
	if raw := string(ctx.Request.Header.Cookie(refreshCookie)); raw != "" {
		return raw
	}
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err == nil {
		return req.RefreshToken
	}
	return ""
}
