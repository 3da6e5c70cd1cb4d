package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/oncowatch/oncowatch/pkg/usecase"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

// SessionCookieName names the cookie holding the dashboard session ID
const SessionCookieName = "oncowatch_session"

const anonymousClinician = "anonymous"

type sessionCtxKey struct{}

func contextWithSession(ctx context.Context, s *usecase.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

func sessionFromContext(ctx context.Context) *usecase.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*usecase.Session)
	return s
}

// sessionMiddleware resolves the session cookie, starting a new session when
// the cookie is missing, expired or belongs to another clinician
func sessionMiddleware(store *usecase.SessionStore, clinicianHeader string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clinician := strings.TrimSpace(r.Header.Get(clinicianHeader))
			if clinician == "" {
				clinician = anonymousClinician
			}

			var session *usecase.Session
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if s, ok := store.Get(cookie.Value); ok && s.Clinician == clinician {
					session = s
				}
			}

			if session == nil {
				session = store.Create(clinician)
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    session.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				logging.From(r.Context()).Debug("session started",
					"session_id", session.ID,
					"clinician", clinician,
				)
			}

			logger := logging.From(r.Context()).With("session_id", session.ID)
			ctx := logging.With(contextWithSession(r.Context(), session), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
