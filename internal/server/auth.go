package server

import (
	"crypto/subtle"
	"net/http"
)

const sessionName = "peter-session"

// handleLogin exchanges the shared token for a session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Token == "" {
		writeError(w, http.StatusForbidden, "login disabled: no token configured")
		return
	}

	token := r.FormValue("token")
	if token == "" {
		token = r.Header.Get("X-Peter-Token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Token)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	session, _ := s.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogout clears the session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireSession gates the API behind an authenticated session unless
// auth is disabled.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.NoAuth {
			next.ServeHTTP(w, r)
			return
		}
		session, _ := s.sessions.Get(r, sessionName)
		if ok, _ := session.Values["authenticated"].(bool); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
