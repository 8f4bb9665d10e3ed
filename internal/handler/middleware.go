package handler

import (
	"net/http"

	"tush00nka/chathub/internal/pkg/apperror"
	"tush00nka/chathub/internal/pkg/auth"
	"tush00nka/chathub/internal/pkg/httputils"

	"github.com/gorilla/mux"
)

// Authenticate resolves the request principal from its access token and
// rejects the request if there is none.
func Authenticate(tokens *auth.Manager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := auth.TokenFromRequest(r)
			if token == "" {
				httputils.ResponseError(w, apperror.Unauthorized("Unauthorized request"))
				return
			}
			claims, err := tokens.ValidateToken(token)
			if err != nil {
				httputils.ResponseError(w, apperror.Unauthorized("Invalid access token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// requester returns the authenticated user id set by Authenticate.
func requester(r *http.Request) (uint, error) {
	id, ok := auth.UserIDFrom(r.Context())
	if !ok {
		return 0, apperror.Unauthorized("Unauthorized request")
	}
	return id, nil
}
