package api

import (
	"bytes"
	"net/http"

	"github.com/okian/avaliece/pkg/logger"
	"github.com/okian/avaliece/pkg/metrics"
)

// LoginFailedMessage is shown under the login form after a rejected attempt.
const LoginFailedMessage = "Usuário ou senha incorretos."

// AuthHandler serves the login form and the logout action.
type AuthHandler struct {
	deps   Dependencies
	cookie cookieSettings
	log    logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps Dependencies, cookie cookieSettings, log logger.Logger) *AuthHandler {
	return &AuthHandler{deps: deps, cookie: cookie, log: log}
}

type loginPage struct {
	Username string
	Error    string
}

// HandleLogin handles GET and POST /login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := authenticated(r, h.deps, h.cookie); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.render(w, r, http.StatusOK, loginPage{})
	case http.MethodPost:
		h.submit(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AuthHandler) submit(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if !h.deps.Verify(r.Context(), username, password) {
		metrics.RecordLogin("failure")
		h.log.Info(r.Context(), "login rejected", logger.String("username", username))
		h.render(w, r, http.StatusUnauthorized, loginPage{Username: username, Error: LoginFailedMessage})
		return
	}

	// a fresh id on every login; any previous session is dropped
	if old := h.cookie.read(r); old != "" {
		h.deps.Logout(r.Context(), old)
	}
	sess := h.deps.Login(r.Context(), username)
	metrics.RecordLogin("success")
	h.log.Info(r.Context(), "login accepted", logger.String("username", username))

	h.cookie.issue(w, sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout handles POST /logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if id := h.cookie.read(r); id != "" {
		h.deps.Logout(r.Context(), id)
	}
	h.cookie.clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, page loginPage) {
	var buf bytes.Buffer
	if err := loginTemplate.Execute(&buf, page); err != nil {
		h.log.Error(r.Context(), "render login page", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind("api.login", ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
