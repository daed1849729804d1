package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/popdash/internal/core"
)

type ctxKey int

const ctxKeySession ctxKey = iota

// sessionFromContext returns the session attached by withSession.
func sessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKeySession).(*Session)
	return sess
}

// withSession resolves the caller's session from its cookie, creating one
// with the default selection when missing or expired, and attaches it to
// the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *Session
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			sess, _ = s.sessions.Get(c.Value)
		}

		if sess == nil {
			sess = s.sessions.Create(core.NewSelection(s.ds))
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.Session.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeySession, sess)
		ctx = core.ContextWithSessionID(ctx, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
