// Package httpapi serves the browser-facing endpoints of the store: the
// OAuth provider callback and a health check.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server/services"
	"github.com/gorilla/mux"
)

type OAuthService interface {
	RedirectFor(state string) (string, error)
	Callback(ctx context.Context, code, state string) (string, error)
}

type handlers struct {
	oauth  OAuthService
	logger logging.Logger
}

func NewRouter(oauth OAuthService, l logging.Logger) *mux.Router {
	h := &handlers{oauth: oauth, logger: l}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc(services.CallbackPath, h.oauthCallback).Methods(http.MethodGet)
	return r
}

// oauthCallback finishes a provider sign-in and bounces the browser back
// into the app. Anything after a valid state is reported to the app in the
// redirect fragment rather than as an HTTP error.
func (h *handlers) oauthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	state := q.Get("state")
	redirectTo, err := h.oauth.RedirectFor(state)
	if err != nil {
		h.logger.Warn(ctx, "oauth callback with bad state", "error", err)
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}

	if e := q.Get("error"); e != "" {
		http.Redirect(w, r, services.ErrorRedirect(redirectTo, e, q.Get("error_description")), http.StatusFound)
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Redirect(w, r, services.ErrorRedirect(redirectTo, "invalid_request", "missing authorization code"), http.StatusFound)
		return
	}

	target, err := h.oauth.Callback(ctx, code, state)
	if err != nil {
		h.logger.Error(ctx, "oauth callback failed", "error", err)
		http.Redirect(w, r, services.ErrorRedirect(redirectTo, "server_error", "sign-in failed"), http.StatusFound)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
