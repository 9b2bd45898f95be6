package handlers

import (
	"errors"
	"net/http"

	"github.com/wolfiez/wallpaper/internal/services"
	"github.com/wolfiez/wallpaper/types"
)

// PageHandler serves the site-level routes: the form login flow that issues
// the session cookie, registration, logout, and the dashboard. View
// rendering is out of scope, so page GETs return JSON descriptors that a
// frontend turns into markup.
type PageHandler struct {
	auth         *services.AuthService
	users        *services.UserService
	boards       *services.BoardService
	secureCookie bool
}

func NewPageHandler(auth *services.AuthService, users *services.UserService, boards *services.BoardService, secureCookie bool) *PageHandler {
	return &PageHandler{
		auth:         auth,
		users:        users,
		boards:       boards,
		secureCookie: secureCookie,
	}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":   "wallpaper boards",
		"status": "ok",
	})
}

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, map[string]any{
		"page":    "login",
		"error":   q.Get("error") == "true",
		"logout":  q.Get("logout") == "true",
		"expired": q.Get("expired") == "true",
	})
}

func (h *PageHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"page":  "register",
		"error": r.URL.Query().Get("error"),
	})
}

// LoginSubmit processes the login form. Success sets the session cookie and
// redirects to the dashboard; failure redirects back to the login page with
// an error marker, without revealing which credential was wrong.
func (h *PageHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=true", http.StatusSeeOther)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, session, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		http.Redirect(w, r, "/login?error=true", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, h.sessionCookie(session))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// RegisterSubmit processes the registration form and sends the new user to
// the login page.
func (h *PageHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/register?error=invalid", http.StatusSeeOther)
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if name == "" || email == "" || password == "" {
		http.Redirect(w, r, "/register?error=missing_fields", http.StatusSeeOther)
		return
	}

	if _, err := h.users.Register(r.Context(), name, email, password); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			http.Redirect(w, r, "/register?error=email_taken", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/register?error=internal", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/login?registered=true", http.StatusSeeOther)
}

// Logout invalidates the session and clears its cookie.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		_ = h.auth.Logout(r.Context(), cookie.Value)
	}

	expired := h.sessionCookie(types.Session{})
	expired.MaxAge = -1
	http.SetCookie(w, expired)

	http.Redirect(w, r, "/login?logout=true", http.StatusSeeOther)
}

// Dashboard returns the authenticated user together with their boards.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	boards, err := h.boards.ListForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":   user,
		"boards": boards,
	})
}

func (h *PageHandler) sessionCookie(session types.Session) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if !session.ExpiresAt.IsZero() {
		cookie.Expires = session.ExpiresAt
	}
	return cookie
}
