package middleware

import (
	"net/http"
	"slices"

	"github.com/aashari/go-generative-gateway/internal/utils"
)

// CORSMiddleware returns middleware answering preflight requests and adding
// CORS headers for the configured origins. "*" allows every origin.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, utils.CORSAllowOriginAll)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set(utils.HeaderAccessControlAllowOrigin, utils.CORSAllowOriginAll)
			case origin != "" && slices.Contains(allowedOrigins, origin):
				w.Header().Set(utils.HeaderAccessControlAllowOrigin, origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set(utils.HeaderAccessControlAllowMethods, utils.CORSAllowMethodsAll)
			w.Header().Set(utils.HeaderAccessControlAllowHeaders, utils.CORSAllowHeadersStd)
			w.Header().Set(utils.HeaderAccessControlExposeHeaders, utils.CORSExposeHeadersStd)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
