package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nohumanman/descenders-modding/internal/api/apierr"
	"github.com/nohumanman/descenders-modding/internal/api/middleware"
	"github.com/nohumanman/descenders-modding/internal/api/response"
	"github.com/nohumanman/descenders-modding/internal/dependencies/clock"
	"github.com/nohumanman/descenders-modding/internal/dependencies/random"
	"github.com/nohumanman/descenders-modding/internal/model"
)

const (
	stateCookieName = "oauth_state"
	stateLength     = 32
	stateAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	stateTTL        = 10 * time.Minute
	sessionTTL      = 7 * 24 * time.Hour
)

// Resolver maps credentials to identities and verdicts
type Resolver interface {
	Resolve(ctx context.Context, credential string) (model.Verdict, error)
	Identify(ctx context.Context, credential string) (model.IdentityID, error)
	Lookup(ctx context.Context, credential string) (*model.Identity, error)
}

// LoginProvider runs the external OAuth login
type LoginProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	SteamID(ctx context.Context, credential string) (string, error)
}

// OperatorStore records who has logged in to the dashboard
type OperatorStore interface {
	SaveOperator(ctx context.Context, op *model.Operator) error
	GetOperator(ctx context.Context, id model.IdentityID) (*model.Operator, error)
}

// AuthHandler handles login and permission endpoints
type AuthHandler struct {
	resolver     Resolver
	provider     LoginProvider
	operators    OperatorStore
	random       random.Random
	clock        clock.Clock
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. provider may be nil when login
// is not configured; Login and Callback then report 503.
func NewAuthHandler(
	resolver Resolver,
	provider LoginProvider,
	operators OperatorStore,
	random random.Random,
	clock clock.Clock,
	logger *slog.Logger,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{
		resolver:     resolver,
		provider:     provider,
		operators:    operators,
		random:       random,
		clock:        clock,
		logger:       logger.With(slog.String("component", "auth-handler")),
		secureCookie: secureCookie,
	}
}

// Permission handles GET /api/v1/permission
func (h *AuthHandler) Permission(w http.ResponseWriter, r *http.Request) {
	verdict, err := h.resolver.Resolve(r.Context(), middleware.ExtractCredential(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.OK(w, response.PermissionResponse{Permission: verdict})
}

// Login handles GET /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		WriteError(w, apierr.NewLoginUnavailableError())
		return
	}

	state := h.random.String(stateLength, stateAlphabet)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/v1/auth/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		WriteError(w, apierr.NewLoginUnavailableError())
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		WriteError(w, NewInvalidRequestError("login failed: "+e))
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != q.Get("state") {
		WriteError(w, NewInvalidRequestError("login state mismatch"))
		return
	}
	code := strings.TrimSpace(q.Get("code"))
	if code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	ctx := r.Context()
	credential, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("code exchange failed", slog.String("error", err.Error()))
		WriteError(w, NewInvalidRequestError("code exchange failed"))
		return
	}

	// Goes through the resolver so the new session is cached before its
	// first privileged request
	identity, err := h.resolver.Lookup(ctx, credential)
	if err != nil {
		h.logger.Warn("identity lookup after login failed", slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	steamID, err := h.provider.SteamID(ctx, credential)
	if err != nil {
		// A missing connections scope is not fatal to login
		h.logger.Info("steam connection unavailable",
			slog.String("identity_id", string(identity.ID)),
			slog.String("error", err.Error()),
		)
	}

	op := &model.Operator{
		ID:          identity.ID,
		Username:    identity.Username,
		Email:       identity.Email,
		SteamID:     steamID,
		LastLoginAt: h.clock.Now(),
	}
	if err := h.operators.SaveOperator(ctx, op); err != nil {
		h.logger.Error("failed to save operator",
			slog.String("identity_id", string(identity.ID)),
			slog.String("error", err.Error()),
		)
		WriteError(w, err)
		return
	}

	h.logger.Info("operator logged in",
		slog.String("identity_id", string(identity.ID)),
		slog.String("username", identity.Username),
	)

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    credential,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	credential := middleware.ExtractCredential(r)
	if strings.TrimSpace(credential) == "" {
		WriteError(w, apierr.NewUnauthenticatedError())
		return
	}

	ctx := r.Context()
	id, err := h.resolver.Identify(ctx, credential)
	if err != nil {
		WriteError(w, err)
		return
	}
	verdict, err := h.resolver.Resolve(ctx, credential)
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.MeResponse{ID: string(id), Permission: verdict}
	op, err := h.operators.GetOperator(ctx, id)
	switch {
	case err == nil:
		resp.Username = op.Username
		resp.Email = op.Email
		resp.SteamID = op.SteamID
	case !errors.Is(err, model.ErrOperatorNotFound):
		WriteError(w, err)
		return
	}

	response.OK(w, resp)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	response.NoContent(w)
}
